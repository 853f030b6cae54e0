package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-otp-redis/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RegisterEnvelope wraps the registration response. Field casing matches the
// public API contract: the OTP is echoed back so the client can display it
// in development flows.
type RegisterEnvelope struct {
	Msg  string       `json:"msg"`
	OTP  string       `json:"OTP"`
	User *domain.User `json:"User"`
}

// ResendEnvelope wraps the resend response.
type ResendEnvelope struct {
	Msg string `json:"msg"`
	OTP string `json:"otp"`
}

// LoginEnvelope wraps the login response.
type LoginEnvelope struct {
	Msg   string       `json:"msg"`
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}
