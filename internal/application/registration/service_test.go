package registration

import (
	"context"
	"errors"
	"testing"

	"github.com/go-otp-redis/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

type mockOTPStore struct{ mock.Mock }

func (m *mockOTPStore) Put(ctx context.Context, identity, code string) error {
	return m.Called(ctx, identity, code).Error(0)
}
func (m *mockOTPStore) Delete(ctx context.Context, identity string) error {
	return m.Called(ctx, identity).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishOTPIssued(ctx context.Context, ev domain.OTPIssued) error {
	return m.Called(ctx, ev).Error(0)
}

// --- helpers ---

func newService(us *mockUserStore, os *mockOTPStore, pub *mockPublisher) Service {
	return NewService(ServiceDeps{
		UserRepo:  us,
		OTPStore:  os,
		Channel:   pub,
		OTPLength: 4,
	})
}

func baseReq() domain.CreateUserRequest {
	return domain.CreateUserRequest{
		Username:    "alice",
		Password:    "password123",
		Email:       "alice@example.com",
		FirstName:   "Alice",
		LastName:    "Smith",
		PhoneNumber: "+15551234567",
	}
}

func assertDigits(t *testing.T, code string) {
	t.Helper()
	require.Len(t, code, 4)
	for _, c := range code {
		assert.True(t, c >= '0' && c <= '9', "unexpected character %q in otp %q", c, code)
	}
}

// --- Register ---

func TestRegister_UsernameConflict(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "alice").Return(&domain.User{}, nil)

	svc := newService(us, &mockOTPStore{}, &mockPublisher{})
	_, _, err := svc.Register(context.Background(), baseReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	us.AssertExpectations(t)
}

func TestRegister_EmailConflict(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "alice").Return(nil, domain.ErrNotFound)
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.User{}, nil)

	svc := newService(us, &mockOTPStore{}, &mockPublisher{})
	_, _, err := svc.Register(context.Background(), baseReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	us.AssertExpectations(t)
}

func TestRegister_StoreFailureAbortsBeforeAccountWrite(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "alice").Return(nil, domain.ErrNotFound)
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)

	os := &mockOTPStore{}
	os.On("Put", mock.Anything, "alice@example.com", mock.Anything).Return(domain.ErrStoreUnavailable)

	svc := newService(us, os, &mockPublisher{})
	_, _, err := svc.Register(context.Background(), baseReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
	// The account record must never be written when the OTP store failed.
	us.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestRegister_AccountStoreOutageFailsRegistration(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "alice").Return(nil, errors.New("dynamo: connection refused"))

	os := &mockOTPStore{}
	svc := newService(us, os, &mockPublisher{})
	_, _, err := svc.Register(context.Background(), baseReq())

	// An unreachable account store must fail the request, not pass as
	// "username free" and admit a possible duplicate.
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrConflict))
	us.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	os.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegister_EmailLookupOutageFailsRegistration(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "alice").Return(nil, domain.ErrNotFound)
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, errors.New("dynamo: connection refused"))

	os := &mockOTPStore{}
	svc := newService(us, os, &mockPublisher{})
	_, _, err := svc.Register(context.Background(), baseReq())

	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrConflict))
	us.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	os.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegister_PublishFailureStillSucceeds(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "alice").Return(nil, domain.ErrNotFound)
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	os := &mockOTPStore{}
	os.On("Put", mock.Anything, "alice@example.com", mock.Anything).Return(nil)

	pub := &mockPublisher{}
	pub.On("PublishOTPIssued", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	svc := newService(us, os, pub)
	u, code, err := svc.Register(context.Background(), baseReq())

	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.False(t, u.Verified)
	assertDigits(t, code)
	pub.AssertExpectations(t)
}

func TestRegister_HappyPath_PublishesEventWithOTP(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "alice").Return(nil, domain.ErrNotFound)
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	var storedCode string
	os := &mockOTPStore{}
	os.On("Put", mock.Anything, "alice@example.com", mock.Anything).Run(func(args mock.Arguments) {
		storedCode = args.String(2)
	}).Return(nil)

	var published domain.OTPIssued
	pub := &mockPublisher{}
	pub.On("PublishOTPIssued", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		published = args.Get(1).(domain.OTPIssued)
	}).Return(nil)

	svc := newService(us, os, pub)
	u, code, err := svc.Register(context.Background(), baseReq())

	require.NoError(t, err)
	assertDigits(t, code)
	// The returned OTP, the stored OTP and the published OTP are all the same value.
	assert.Equal(t, code, storedCode)
	assert.Equal(t, code, published.OTP)
	assert.Equal(t, "+15551234567", published.PhoneNumber)
	assert.NotEmpty(t, u.UserID)
	assert.NotEqual(t, "password123", u.PasswordHash, "password must be hashed")
	us.AssertExpectations(t)
}

func TestRegister_AccountWriteFailureClearsSlot(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "alice").Return(nil, domain.ErrNotFound)
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.Anything).Return(errors.New("dynamo error"))

	os := &mockOTPStore{}
	os.On("Put", mock.Anything, "alice@example.com", mock.Anything).Return(nil)
	os.On("Delete", mock.Anything, "alice@example.com").Return(nil)

	svc := newService(us, os, &mockPublisher{})
	_, _, err := svc.Register(context.Background(), baseReq())

	require.Error(t, err)
	os.AssertCalled(t, "Delete", mock.Anything, "alice@example.com")
}

// --- Resend ---

func TestResend_UnknownIdentity(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "x@x.com").Return(nil, domain.ErrNotFound)

	svc := newService(us, &mockOTPStore{}, &mockPublisher{})
	_, _, err := svc.Resend(context.Background(), "x@x.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestResend_AlreadyVerified(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.User{Verified: true}, nil)

	svc := newService(us, &mockOTPStore{}, &mockPublisher{})
	_, _, err := svc.Resend(context.Background(), "alice@example.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAlreadyVerified))
}

func TestResend_DeletesOldSlotBeforeStoringNew(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.User{
		Email: "alice@example.com", PhoneNumber: "+15551234567",
	}, nil)

	var calls []string
	os := &mockOTPStore{}
	os.On("Delete", mock.Anything, "alice@example.com").Run(func(mock.Arguments) {
		calls = append(calls, "delete")
	}).Return(nil)
	os.On("Put", mock.Anything, "alice@example.com", mock.Anything).Run(func(mock.Arguments) {
		calls = append(calls, "put")
	}).Return(nil)

	pub := &mockPublisher{}
	pub.On("PublishOTPIssued", mock.Anything, mock.Anything).Return(nil)

	svc := newService(us, os, pub)
	_, code, err := svc.Resend(context.Background(), "alice@example.com")

	require.NoError(t, err)
	assertDigits(t, code)
	assert.Equal(t, []string{"delete", "put"}, calls)
}

func TestResend_StoreFailurePropagates(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.User{
		Email: "alice@example.com",
	}, nil)

	os := &mockOTPStore{}
	os.On("Delete", mock.Anything, "alice@example.com").Return(domain.ErrStoreUnavailable)

	svc := newService(us, os, &mockPublisher{})
	_, _, err := svc.Resend(context.Background(), "alice@example.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
}
