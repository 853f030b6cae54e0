package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-otp-redis/internal/application/registration"
	"github.com/go-otp-redis/internal/domain"
	"github.com/go-otp-redis/internal/pkg/validate"
)

// RegistrationHandler handles the registration and OTP resend endpoints.
type RegistrationHandler struct {
	svc registration.Service
}

func NewRegistrationHandler(svc registration.Service) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, code, err := h.svc.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrConflict):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, RegisterEnvelope{
		Msg:  "User Registered Successfully",
		OTP:  code,
		User: u,
	})
}

func (h *RegistrationHandler) Resend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, code, err := h.svc.Resend(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyVerified), errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, ResendEnvelope{
		Msg: fmt.Sprintf("%s %s, a new OTP has been sent, check your phone for verification", u.FirstName, u.LastName),
		OTP: code,
	})
}
