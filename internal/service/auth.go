package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"

	"github.com/threetgame/backend/internal/apperror"
	"github.com/threetgame/backend/internal/entity"
)

const tokenLifetime = 24 * time.Hour

// AuthService is the identity collaborator: it turns a bearer credential
// into an identity or fails with ErrUnauthorized. The room core never
// inspects credential internals.
type AuthService interface {
	GenerateToken(identity entity.Identity) (string, error)
	VerifyToken(token string) (entity.Identity, error)
}

type authService struct {
	secretKey string
}

func NewAuthService(secretKey string) AuthService {
	return &authService{
		secretKey: secretKey,
	}
}

func (that *authService) GenerateToken(identity entity.Identity) (string, error) {
	claims := jwt.MapClaims{
		"sub":  identity.ID,
		"name": identity.Username,
		"exp":  time.Now().Add(tokenLifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(that.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

func (that *authService) VerifyToken(tokenString string) (entity.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(that.secretKey), nil
	})
	if err != nil || !token.Valid {
		return entity.Identity{}, apperror.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return entity.Identity{}, apperror.ErrUnauthorized
	}

	userID, _ := claims["sub"].(string)
	username, _ := claims["name"].(string)
	if userID == "" {
		return entity.Identity{}, apperror.ErrUnauthorized
	}

	return entity.Identity{ID: userID, Username: username}, nil
}
