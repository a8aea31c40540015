package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/JungWooHyub/le-feu-sub000/internal/guard"
	"github.com/JungWooHyub/le-feu-sub000/internal/platform/httpx"
	"github.com/JungWooHyub/le-feu-sub000/internal/rbac"
	"github.com/JungWooHyub/le-feu-sub000/internal/shared"
)

// Handler exposes the user-facing identity endpoints and the privileged
// role-assignment route.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	guard    *guard.Guard
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, g *guard.Guard) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		guard:    g,
		validate: validator.New(),
	}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Protect(guard.Options{RequireAuth: true}))
		r.Get("/me", h.me)
		r.Get("/me/permissions", h.myPermissions)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Protect(guard.Options{
			RequireAuth:        true,
			RequiredPermission: rbac.PermUsersManageRoles,
			Action:             "users.assign_role",
		}))
		r.Put("/{userId}/role", h.assignRole)
	})
}

type meResponse struct {
	ID          string   `json:"id"`
	Role        string   `json:"role"`
	IsVerified  bool     `json:"is_verified"`
	Permissions []string `json:"permissions,omitempty"`
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	httpx.JSON(w, http.StatusOK, meResponse{
		ID:         actor.ID,
		Role:       string(actor.Role),
		IsVerified: actor.IsVerified,
	})
}

func (h *Handler) myPermissions(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	perms := rbac.PermissionsOf(actor.Role)
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = string(p)
	}
	httpx.JSON(w, http.StatusOK, meResponse{
		ID:          actor.ID,
		Role:        string(actor.Role),
		IsVerified:  actor.IsVerified,
		Permissions: names,
	})
}

type assignRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user employer curator admin super_admin"`
}

func (h *Handler) assignRole(w http.ResponseWriter, r *http.Request) {
	var payload assignRoleRequest
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON payload")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "role must be one of the platform roles")
		return
	}

	actor := shared.ActorFromContext(r.Context())
	targetID := chi.URLParam(r, "userId")
	if err := h.service.AssignRole(r.Context(), actor, targetID, rbac.Role(payload.Role)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{
		"user_id": targetID,
		"role":    payload.Role,
	})
}
