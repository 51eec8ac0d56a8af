package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"notsolong/internal/config"
)

// Token types carried in the token_type claim. The auth middleware
// only accepts access tokens; the refresh endpoint only refresh ones.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var ErrWrongTokenType = errors.New("wrong token type")

// TokenPair bundles the two JWTs issued on register/login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// GenerateTokenPair issues an access/refresh pair for a user.
func GenerateTokenPair(cfg *config.Config, userID uint) (TokenPair, error) {
	access, err := signToken(cfg, userID, TokenTypeAccess, cfg.JWTAccessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := signToken(cfg, userID, TokenTypeRefresh, cfg.JWTRefreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

func signToken(cfg *config.Config, userID uint, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":    strconv.FormatUint(uint64(userID), 10),
		"token_type": tokenType,
		"jti":        uuid.NewString(),
		"iat":        now.Unix(),
		"exp":        now.Add(ttl).Unix(),
		"iss":        cfg.JWTIssuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecretKey))
}

// ParseToken validates signature, expiry and token_type, and returns
// the user ID the token was issued for.
func ParseToken(cfg *config.Config, tokenString, wantType string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.JWTSecretKey), nil
	})
	if err != nil {
		return 0, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, jwt.ErrTokenInvalidClaims
	}
	if tokenType, _ := claims["token_type"].(string); tokenType != wantType {
		return 0, ErrWrongTokenType
	}
	raw, _ := claims["user_id"].(string)
	userID, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("bad user_id claim: %w", err)
	}
	return uint(userID), nil
}
