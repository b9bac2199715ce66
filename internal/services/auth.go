package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/maatchaa/maatchaa-backend/internal/pkg/ctxutil"
	apperrors "github.com/maatchaa/maatchaa-backend/internal/pkg/errors"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

// AuthService issues and verifies operator bearer tokens for the admin API.
type AuthService interface {
	IssueToken(operatorID string) (string, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type OperatorClaims struct {
	jwt.RegisteredClaims
}

type authService struct {
	log          *logger.Logger
	jwtSecretKey string
	accessTTL    time.Duration
	now          func() time.Time
}

func NewAuthService(log *logger.Logger, jwtSecretKey string, accessTTL time.Duration) AuthService {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	return &authService{
		log:          log.With("service", "AuthService"),
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
		now:          time.Now,
	}
}

func (as *authService) IssueToken(operatorID string) (string, error) {
	operatorID = strings.TrimSpace(operatorID)
	if operatorID == "" {
		return "", fmt.Errorf("operator id required: %w", apperrors.ErrInvalidArgument)
	}
	now := as.now()
	claims := OperatorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   operatorID,
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, fmt.Errorf("missing token: %w", apperrors.ErrUnauthorized)
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	parsed, err := parser.ParseWithClaims(tokenString, &OperatorClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("parse token: %w", apperrors.ErrUnauthorized)
	}
	claims, ok := parsed.Claims.(*OperatorClaims)
	if !ok || !parsed.Valid {
		return ctx, fmt.Errorf("invalid or expired token: %w", apperrors.ErrUnauthorized)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return ctx, fmt.Errorf("token has no subject: %w", apperrors.ErrUnauthorized)
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		OperatorID:  claims.Subject,
	}), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
