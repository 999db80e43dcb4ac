package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"
	TokenTypeSSE    = "sse"

	ClaimUserID = "user_id"
	ClaimRole   = "role"
	ClaimType   = "type"
)

var ErrInvalidClaims = errors.New("invalid token claims")

type Service interface {
	GenerateAccessToken(userID string, role user.Role) (token string, expiresAt int64, err error)
	GenerateSSEToken(userID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (userID string, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpiration time.Duration
	sseTokenExpiration    time.Duration
	tokenAuth             *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpiration, sseTokenExpiration time.Duration) Service {
	return &JWTService{
		accessTokenExpiration: accessTokenExpiration,
		sseTokenExpiration:    sseTokenExpiration,
		tokenAuth:             jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

// GenerateAccessToken issues the bearer token the API authenticates with.
// Tokens are minted by the identity provider in production; this is used by
// tooling and tests.
func (j *JWTService) GenerateAccessToken(userID string, role user.Role) (token string, expiresAt int64, err error) {
	if !role.Valid() {
		return "", 0, fmt.Errorf("%w: role %q", ErrInvalidClaims, role)
	}
	expiresAt = time.Now().Add(j.accessTokenExpiration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		ClaimUserID: userID,
		ClaimRole:   string(role),
		ClaimType:   TokenTypeAccess,
		"exp":       expiresAt,
	})
	return tokenString, expiresAt, err
}

// GenerateSSEToken generates a short-lived token for SSE connections
func (j *JWTService) GenerateSSEToken(userID string) (token string, expiresIn int, err error) {
	expiresIn = int(j.sseTokenExpiration / time.Second)
	expiresAt := time.Now().Add(j.sseTokenExpiration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		ClaimUserID: userID,
		ClaimType:   TokenTypeSSE,
		"exp":       expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, expiresIn, nil
}

// ValidateSSEToken validates an SSE token and returns the user ID
func (j *JWTService) ValidateSSEToken(tokenString string) (userID string, err error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", err
	}

	claims, err := token.AsMap(context.Background())
	if err != nil {
		return "", err
	}
	if claims[ClaimType] != TokenTypeSSE {
		return "", ErrInvalidClaims
	}

	userID, ok := claims[ClaimUserID].(string)
	if !ok || userID == "" {
		return "", ErrInvalidClaims
	}
	return userID, nil
}

// ActorFromClaims builds the caller identity from verified access-token
// claims.
func ActorFromClaims(claims map[string]interface{}) (user.Actor, error) {
	if claims[ClaimType] != TokenTypeAccess {
		return user.Actor{}, ErrInvalidClaims
	}

	userID, ok := claims[ClaimUserID].(string)
	if !ok || userID == "" {
		return user.Actor{}, ErrInvalidClaims
	}

	rawRole, _ := claims[ClaimRole].(string)
	role, ok := user.ParseRole(rawRole)
	if !ok {
		return user.Actor{}, ErrInvalidClaims
	}

	return user.Actor{UserID: userID, Role: role}, nil
}
