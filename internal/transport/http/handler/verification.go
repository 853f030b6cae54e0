package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-otp-redis/internal/application/verification"
	"github.com/go-otp-redis/internal/domain"
	"github.com/go-otp-redis/internal/pkg/validate"
)

// VerificationHandler handles the OTP verification endpoint.
type VerificationHandler struct {
	svc verification.Service
}

func NewVerificationHandler(svc verification.Service) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

func (h *VerificationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
		OTP   string `json:"otp" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Verify(r.Context(), req.Email, req.OTP); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrAlreadyVerified):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrInvalidOTP):
			writeError(w, http.StatusBadRequest, "Invalid OTP")
		default:
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "OTP verified successfully"})
}
