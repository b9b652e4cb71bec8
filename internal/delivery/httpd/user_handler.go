package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type registerUserRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.RegisterUser(r.Context(), req.FullName, req.Email, req.Role)
	if err != nil {
		h.handleUserError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    user,
	})
}

func (h *Handler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	user, err := h.userService.GetUserByID(r.Context(), userID)
	if err != nil {
		h.handleUserError(w, err)
		return
	}

	writeSuccess(w, user)
}

func (h *Handler) GetUserByEmail(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	user, err := h.userService.GetUserByEmail(r.Context(), email)
	if err != nil {
		h.handleUserError(w, err)
		return
	}

	writeSuccess(w, user)
}

func (h *Handler) handleUserError(w http.ResponseWriter, err error) {
	errMsg := err.Error()

	switch errMsg {
	case "user not found":
		writeError(w, http.StatusNotFound, errMsg)
	case "email is already registered":
		writeError(w, http.StatusConflict, errMsg)
	case "full name and email are required", "role must be teacher or student":
		writeError(w, http.StatusBadRequest, errMsg)
	default:
		h.logger.Error().Err(err).Msg("User service error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
