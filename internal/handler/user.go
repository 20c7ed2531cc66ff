package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sakif/accountkit/internal/model"
)

// UserService is the subset of service.UserService the handlers call.
// Declared here, on the consumer side, so tests can stub storage failures.
type UserService interface {
	Create(ctx context.Context, email, password string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindAll(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int64, error)
	ValidateCredentials(ctx context.Context, email, password string) (bool, error)
}

// UserHandler exposes the user store over JSON.
type UserHandler struct {
	users  UserService
	logger *zap.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Email string `json:"email"`
}

// HandleCreate registers a user.
//
// HTTP: POST /api/users
// REQUEST BODY: {"email": "a@example.com", "password": "secret1"}
// RESPONSE: 201 {"id":1,"email":"a@example.com","created_at":"2024-01-01 10:00:00"}
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warn("invalid user JSON", zap.Error(err))
		writeBadRequest(w, "Invalid JSON body")
		return
	}

	user, err := h.users.Create(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user.Public())
}

// HandleList returns every user, newest first.
//
// HTTP: GET /api/users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.FindAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.PublicUsers(users))
}

// HandleCount returns {"count": n}.
//
// HTTP: GET /api/users/count
func (h *UserHandler) HandleCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.users.Count(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}

// HandleGetByID returns one user.
//
// HTTP: GET /api/users/{id}
func (h *UserHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	user, err := h.users.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "user not found with id " + strconv.FormatInt(id, 10),
		})
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}

// HandleLookup finds a user by email.
//
// HTTP: GET /api/users/lookup?email=a@example.com
func (h *UserHandler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeBadRequest(w, "email query parameter is required")
		return
	}

	user, err := h.users.FindByEmail(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "user not found with email " + email,
		})
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}

// HandleUpdate changes a user's email. An unknown id is not an error.
//
// HTTP: PUT /api/users/{id}
// REQUEST BODY: {"email": "new@example.com"}
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warn("invalid user update JSON", zap.Error(err))
		writeBadRequest(w, "Invalid JSON body")
		return
	}

	if err := h.users.Update(r.Context(), &model.User{ID: id, Email: req.Email}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete removes a user.
//
// HTTP: DELETE /api/users/{id}
// 204 when a row was removed, 404 when there was nothing to remove.
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	deleted, err := h.users.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "user not found with id " + strconv.FormatInt(id, 10),
		})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleVerifyCredentials checks an email/password pair.
//
// HTTP: POST /api/credentials/verify
// RESPONSE: 200 {"valid": true|false}
func (h *UserHandler) HandleVerifyCredentials(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}

	valid, err := h.users.ValidateCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

// parseID reads the {id} URL parameter. On failure it writes a 400 and
// returns false.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeBadRequest(w, "user id must be an integer")
		return 0, false
	}
	return id, true
}
