package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"cableops.io/dashboard/internal/governance/audit"
	apperrors "cableops.io/dashboard/internal/pkg/errors"
)

// Claims are the dashboard's JWT claims. The subject is the username.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTConfig holds JWT signing configuration.
type JWTConfig struct {
	SigningKey []byte
	Issuer     string
	ExpiresIn  time.Duration
}

// GenerateToken creates a signed HS256 token for the user.
func GenerateToken(cfg JWTConfig, username, role string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(cfg.ExpiresIn)

	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(cfg.SigningKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// ValidateToken parses tokenString and checks its signature, expiry and issuer.
func (cfg JWTConfig) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return cfg.SigningKey, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// JWTAuth validates the bearer token and puts the user into the request
// context, both for handlers and as the audit actor.
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			Fail(c, apperrors.Unauthorized(apperrors.CodeTokenMissing, "Not authenticated"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			Fail(c, apperrors.Unauthorized(apperrors.CodeTokenInvalid, "Invalid authorization header format"))
			return
		}

		claims, err := cfg.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			msg := "Could not validate credentials"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token expired"
			}
			Fail(c, apperrors.Unauthorized(apperrors.CodeTokenInvalid, msg))
			return
		}

		c.Set(string(ctxKeyUsername), claims.Subject)
		c.Set(string(ctxKeyRole), claims.Role)
		ctx := SetUserContext(c.Request.Context(), claims.Subject, claims.Role)
		c.Request = c.Request.WithContext(audit.WithActor(ctx, claims.Subject))

		c.Next()
	}
}
