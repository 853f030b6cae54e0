package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-otp-redis/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockVerificationService struct{ mock.Mock }

func (m *mockVerificationService) Verify(ctx context.Context, email, code string) error {
	return m.Called(ctx, email, code).Error(0)
}

func doVerify(h *VerificationHandler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/verify", strings.NewReader(body))
	h.Verify(rec, req)
	return rec
}

func TestVerify_OK(t *testing.T) {
	svc := &mockVerificationService{}
	svc.On("Verify", mock.Anything, "jdoe@example.com", "1234").Return(nil)

	rec := doVerify(NewVerificationHandler(svc), `{"email":"jdoe@example.com","otp":"1234"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "OTP verified successfully")
}

func TestVerify_UnknownEmailIsNotFound(t *testing.T) {
	svc := &mockVerificationService{}
	svc.On("Verify", mock.Anything, "ghost@example.com", "1234").
		Return(fmt.Errorf("user not found: %w", domain.ErrNotFound))

	rec := doVerify(NewVerificationHandler(svc), `{"email":"ghost@example.com","otp":"1234"}`)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVerify_AlreadyVerifiedIsNotFound(t *testing.T) {
	svc := &mockVerificationService{}
	svc.On("Verify", mock.Anything, "jdoe@example.com", "1234").
		Return(fmt.Errorf("account already verified: %w", domain.ErrAlreadyVerified))

	rec := doVerify(NewVerificationHandler(svc), `{"email":"jdoe@example.com","otp":"1234"}`)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVerify_WrongCodeIsBadRequest(t *testing.T) {
	svc := &mockVerificationService{}
	svc.On("Verify", mock.Anything, "jdoe@example.com", "0000").
		Return(fmt.Errorf("otp does not match: %w", domain.ErrInvalidOTP))

	rec := doVerify(NewVerificationHandler(svc), `{"email":"jdoe@example.com","otp":"0000"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid OTP")
}

func TestVerify_StoreFailureIsInternalError(t *testing.T) {
	svc := &mockVerificationService{}
	svc.On("Verify", mock.Anything, "jdoe@example.com", "1234").
		Return(fmt.Errorf("read otp: %w", domain.ErrStoreUnavailable))

	rec := doVerify(NewVerificationHandler(svc), `{"email":"jdoe@example.com","otp":"1234"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestVerify_MissingOTPIsRejectedBeforeService(t *testing.T) {
	svc := &mockVerificationService{}

	rec := doVerify(NewVerificationHandler(svc), `{"email":"jdoe@example.com"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything, mock.Anything)
}
