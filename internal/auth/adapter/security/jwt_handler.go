package security

import (
	"context"
	"errors"
	"time"

	"kbadmin/internal/auth/config"
	"kbadmin/internal/auth/domain/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenInvalid          = errors.New("token is invalid")
	ErrTokenExpired          = errors.New("token is expired")
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")
	ErrTokenRevoked          = errors.New("token is revoked")
)

// JWTokenService implements JWT token generation and validation.
// The optional denylist makes logout effective before natural expiry.
type JWTokenService struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
	denylist  repository.TokenDenylist
}

// NewJWTokenService creates a new JWT token service
func NewJWTokenService(cfg *config.Config, denylist repository.TokenDenylist) (*JWTokenService, error) {
	if cfg.JWTSecretKey == "" {
		return nil, errors.New("jwt secret key cannot be empty")
	}
	if cfg.JWTIssuer == "" {
		return nil, errors.New("jwt issuer cannot be empty")
	}
	if cfg.AccessTokenTTL <= 0 {
		return nil, errors.New("jwt access token TTL must be positive")
	}
	// exp is signed at whole-second precision; a sub-second TTL truncates to
	// at or before the current second and the token is born expired.
	if cfg.AccessTokenTTL < time.Second {
		return nil, errors.New("jwt access token TTL must be at least one second")
	}

	return &JWTokenService{
		secretKey: []byte(cfg.JWTSecretKey),
		issuer:    cfg.JWTIssuer,
		ttl:       cfg.AccessTokenTTL,
		denylist:  denylist,
	}, nil
}

// GenerateToken generates a new JWT token for the given user. Each issuance
// carries fresh iat/jti claims, so two tokens for the same identity are
// distinct yet independently valid.
func (s *JWTokenService) GenerateToken(ctx context.Context, userID, username string) (string, error) {
	now := time.Now()
	claims := &repository.Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// ValidateToken validates a JWT token and returns the claims
func (s *JWTokenService) ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error) {
	claims, err := s.parseClaims(tokenString)
	if err != nil {
		return nil, err
	}

	if s.denylist != nil && claims.ID != "" {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	return claims, nil
}

// RevokeToken places the token's ID on the denylist for the remainder of its
// lifetime. A no-op when no denylist is configured.
func (s *JWTokenService) RevokeToken(ctx context.Context, tokenString string) error {
	if s.denylist == nil {
		return nil
	}

	claims, err := s.parseClaims(tokenString)
	if err != nil {
		return err
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return ErrTokenInvalid
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 {
		// Already expired, nothing to deny
		return nil
	}

	return s.denylist.Revoke(ctx, claims.ID, remaining)
}

func (s *JWTokenService) parseClaims(tokenString string) (*repository.Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenInvalid
	}

	token, err := jwt.ParseWithClaims(tokenString, &repository.Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenSignatureInvalid
		}
		return s.secretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrTokenSignatureInvalid
		}
		return nil, ErrTokenInvalid
	}

	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*repository.Claims)
	if !ok {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

var _ repository.TokenService = (*JWTokenService)(nil)
