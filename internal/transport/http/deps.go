package http

import (
	"github.com/go-otp-redis/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-otp-redis/internal/infrastructure/jwt"
	"github.com/go-otp-redis/internal/infrastructure/redisstore"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    *dynamo.UserRepo
	OTPStore    *redisstore.Store
	Channel     *redisstore.Channel
	JWTProvider *jwtinfra.Provider
}
