package users

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JungWooHyub/le-feu-sub000/internal/auth"
	"github.com/JungWooHyub/le-feu-sub000/internal/rbac"
	"github.com/JungWooHyub/le-feu-sub000/internal/shared"
)

// Repository provides PostgreSQL backed access to user profiles. It is the
// profile store the authentication step consumes.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetProfile implements auth.ProfileStore.
func (r *Repository) GetProfile(ctx context.Context, subjectID string) (auth.Profile, error) {
	var (
		profile  auth.Profile
		role     string
		metadata []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, role, is_verified, metadata FROM users WHERE id = $1`,
		subjectID,
	).Scan(&profile.ID, &role, &profile.IsVerified, &metadata)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.Profile{}, shared.ErrNotFound
		}
		return auth.Profile{}, err
	}
	profile.Role = rbac.Role(role)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &profile.Metadata); err != nil {
			return auth.Profile{}, err
		}
	}
	return profile, nil
}

// UpdateRole reassigns a user's role. Returns shared.ErrNotFound when no
// such user exists.
func (r *Repository) UpdateRole(ctx context.Context, userID string, role rbac.Role) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`,
		userID, string(role),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
