package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"room-chat/internal/config"
	"room-chat/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const operatorRole = "operator"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// Claims identify an operator of the room inspection API. Chat usernames are
// never authenticated.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Service struct {
	cfg *config.Config
	now func() time.Time
}

func NewService(cfg *config.Config) *Service {
	return &Service{
		cfg: cfg,
		now: time.Now,
	}
}

func (s *Service) Login(ctx context.Context, req *models.TokenRequest) (*models.TokenResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Username == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}
	if req.Username != s.cfg.Admin.Username {
		return nil, ErrInvalidCredentials
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.Admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.generateToken(req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &models.TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.cfg.JWT.Secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.Role != operatorRole {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) generateToken(username string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.cfg.JWT.ExpiresIn)

	claims := Claims{
		Role: operatorRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.cfg.JWT.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
