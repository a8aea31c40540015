package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/JungWooHyub/le-feu-sub000/internal/shared"
)

// RemoteVerifier delegates token verification to the identity provider over
// HTTP. It posts the raw token and expects {"sub": "<subject-id>"} back.
type RemoteVerifier struct {
	Endpoint string
	Client   *http.Client
}

// NewRemoteVerifier constructs a verifier with a timeout-bound client.
func NewRemoteVerifier(endpoint string, timeout time.Duration) *RemoteVerifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RemoteVerifier{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: timeout},
	}
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	Subject string `json:"sub"`
}

// Verify implements TokenVerifier. Any transport error, timeout or non-200
// status maps to shared.ErrUnauthenticated.
func (v *RemoteVerifier) Verify(ctx context.Context, token string) (string, error) {
	body, err := json.Marshal(verifyRequest{Token: token})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := v.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth: verify token: %w", shared.ErrUnauthenticated)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", shared.ErrUnauthenticated
	}
	var decoded verifyResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil || decoded.Subject == "" {
		return "", shared.ErrUnauthenticated
	}
	return decoded.Subject, nil
}
