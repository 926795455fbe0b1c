// README: JWT token issuance and verification (HS256).
package infra

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"

	"cabcab/internal/types"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is the authenticated caller extracted from a bearer token.
type Identity struct {
	UserID   types.ID
	UserType string
}

const (
	UserTypePassenger = "passenger"
	UserTypeDriver    = "driver"
	UserTypeAdmin     = "admin"
)

// TokenVerifier turns a bearer token into an Identity.
type TokenVerifier interface {
	Verify(tokenString string) (*Identity, error)
}

type JWTManager struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), ttl: ttl}
}

func (m *JWTManager) Issue(userID types.ID, userType string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       string(userID),
		"user_type": userType,
		"iat":       now.Unix(),
		"exp":       now.Add(m.ttl).Unix(),
	})
	return token.SignedString(m.secret)
}

func (m *JWTManager) Verify(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	userType, _ := claims["user_type"].(string)
	if sub == "" || userType == "" {
		return nil, ErrInvalidToken
	}
	return &Identity{UserID: types.ID(sub), UserType: userType}, nil
}
