package security_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"kbadmin/internal/auth/adapter/security"
	"kbadmin/internal/auth/config"
	"kbadmin/internal/auth/domain/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// fakeDenylist is an in-memory TokenDenylist for exercising revocation
// without Redis.
type fakeDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newFakeDenylist() *fakeDenylist {
	return &fakeDenylist{revoked: make(map[string]time.Duration)}
}

func (d *fakeDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[jti] = ttl
	return nil
}

func (d *fakeDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.revoked[jti]
	return ok, nil
}

type JWTTestSuite struct {
	suite.Suite
	config  *config.Config
	service *security.JWTokenService
}

func (suite *JWTTestSuite) SetupTest() {
	suite.config = &config.Config{
		JWTSecretKey:   "test-secret-key-32-characters-long-12345",
		JWTIssuer:      "test-issuer",
		AccessTokenTTL: 15 * time.Minute,
	}

	service, err := security.NewJWTokenService(suite.config, nil)
	require.NoError(suite.T(), err)
	suite.service = service
}

func (suite *JWTTestSuite) TestNewJWTokenService_ValidationErrors() {
	testCases := []struct {
		name         string
		modifyConfig func(*config.Config)
		expectedErr  string
	}{
		{
			name: "empty secret key",
			modifyConfig: func(cfg *config.Config) {
				cfg.JWTSecretKey = ""
			},
			expectedErr: "jwt secret key cannot be empty",
		},
		{
			name: "empty issuer",
			modifyConfig: func(cfg *config.Config) {
				cfg.JWTIssuer = ""
			},
			expectedErr: "jwt issuer cannot be empty",
		},
		{
			name: "zero TTL",
			modifyConfig: func(cfg *config.Config) {
				cfg.AccessTokenTTL = 0
			},
			expectedErr: "jwt access token TTL must be positive",
		},
		{
			name: "sub-second TTL",
			modifyConfig: func(cfg *config.Config) {
				cfg.AccessTokenTTL = 500 * time.Millisecond
			},
			expectedErr: "jwt access token TTL must be at least one second",
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			cfg := *suite.config // Copy
			tc.modifyConfig(&cfg)

			service, err := security.NewJWTokenService(&cfg, nil)

			assert.Error(suite.T(), err)
			assert.Nil(suite.T(), service)
			assert.Contains(suite.T(), err.Error(), tc.expectedErr)
		})
	}
}

func (suite *JWTTestSuite) TestGenerateToken_Success() {
	ctx := context.Background()

	tokenString, err := suite.service.GenerateToken(ctx, "user-123", "alice")

	require.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), tokenString)

	// Verify token structure
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(suite.config.JWTSecretKey), nil
	})
	require.NoError(suite.T(), err)
	assert.True(suite.T(), token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), "user-123", claims["userID"])
	assert.Equal(suite.T(), "alice", claims["username"])
	assert.Equal(suite.T(), suite.config.JWTIssuer, claims["iss"])
	assert.NotEmpty(suite.T(), claims["jti"])
}

func (suite *JWTTestSuite) TestGenerateToken_DistinctPerIssuance() {
	ctx := context.Background()

	first, err := suite.service.GenerateToken(ctx, "user-123", "alice")
	require.NoError(suite.T(), err)
	second, err := suite.service.GenerateToken(ctx, "user-123", "alice")
	require.NoError(suite.T(), err)

	// Same identity, different instants: both valid, never equal
	assert.NotEqual(suite.T(), first, second)

	_, err = suite.service.ValidateToken(ctx, first)
	assert.NoError(suite.T(), err)
	_, err = suite.service.ValidateToken(ctx, second)
	assert.NoError(suite.T(), err)
}

func (suite *JWTTestSuite) TestValidateToken_RoundTrip() {
	ctx := context.Background()

	tokenString, err := suite.service.GenerateToken(ctx, "user-123", "alice")
	require.NoError(suite.T(), err)

	claims, err := suite.service.ValidateToken(ctx, tokenString)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "user-123", claims.UserID)
	assert.Equal(suite.T(), "alice", claims.Username)
	assert.Equal(suite.T(), suite.config.JWTIssuer, claims.Issuer)
}

func (suite *JWTTestSuite) TestValidateToken_Empty() {
	claims, err := suite.service.ValidateToken(context.Background(), "")
	assert.ErrorIs(suite.T(), err, security.ErrTokenInvalid)
	assert.Nil(suite.T(), claims)
}

func (suite *JWTTestSuite) TestValidateToken_Tampered() {
	ctx := context.Background()

	tokenString, err := suite.service.GenerateToken(ctx, "user-123", "alice")
	require.NoError(suite.T(), err)

	// Flip the last byte of the signature
	tampered := tokenString[:len(tokenString)-1]
	if tokenString[len(tokenString)-1] == 'A' {
		tampered += "B"
	} else {
		tampered += "A"
	}

	claims, err := suite.service.ValidateToken(ctx, tampered)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), claims)
}

func (suite *JWTTestSuite) TestValidateToken_WrongSecret() {
	ctx := context.Background()

	otherCfg := *suite.config
	otherCfg.JWTSecretKey = "another-secret-key-32-characters-long"
	otherService, err := security.NewJWTokenService(&otherCfg, nil)
	require.NoError(suite.T(), err)

	tokenString, err := otherService.GenerateToken(ctx, "user-123", "alice")
	require.NoError(suite.T(), err)

	claims, err := suite.service.ValidateToken(ctx, tokenString)
	assert.ErrorIs(suite.T(), err, security.ErrTokenSignatureInvalid)
	assert.Nil(suite.T(), claims)
}

// signedTokenExpiringAt signs a token with the suite's secret whose exp claim
// is the given instant.
func (suite *JWTTestSuite) signedTokenExpiringAt(expiry time.Time) string {
	claims := &repository.Claims{
		UserID:   "user-123",
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-fixed-expiry",
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(expiry.Add(-suite.config.AccessTokenTTL)),
			Issuer:    suite.config.JWTIssuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(suite.config.JWTSecretKey))
	require.NoError(suite.T(), err)
	return signed
}

func (suite *JWTTestSuite) TestValidateToken_Expired() {
	ctx := context.Background()

	expired := suite.signedTokenExpiringAt(time.Now().Add(-time.Minute))

	claims, err := suite.service.ValidateToken(ctx, expired)
	assert.ErrorIs(suite.T(), err, security.ErrTokenExpired)
	assert.Nil(suite.T(), claims)
}

func (suite *JWTTestSuite) TestGenerateToken_ValidImmediatelyAtShortTTL() {
	ctx := context.Background()

	shortCfg := *suite.config
	shortCfg.AccessTokenTTL = 2 * time.Second
	shortService, err := security.NewJWTokenService(&shortCfg, nil)
	require.NoError(suite.T(), err)

	tokenString, err := shortService.GenerateToken(ctx, "user-123", "alice")
	require.NoError(suite.T(), err)

	// A freshly issued token must verify even at the minimum practical TTL.
	_, err = shortService.ValidateToken(ctx, tokenString)
	assert.NoError(suite.T(), err)
}

func (suite *JWTTestSuite) TestRevokeToken_DenylistedTokenRejected() {
	ctx := context.Background()

	denylist := newFakeDenylist()
	service, err := security.NewJWTokenService(suite.config, denylist)
	require.NoError(suite.T(), err)

	tokenString, err := service.GenerateToken(ctx, "user-123", "alice")
	require.NoError(suite.T(), err)

	_, err = service.ValidateToken(ctx, tokenString)
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), service.RevokeToken(ctx, tokenString))

	claims, err := service.ValidateToken(ctx, tokenString)
	assert.ErrorIs(suite.T(), err, security.ErrTokenRevoked)
	assert.Nil(suite.T(), claims)
}

func (suite *JWTTestSuite) TestRevokeToken_TTLBoundedByRemainingLifetime() {
	ctx := context.Background()

	denylist := newFakeDenylist()
	service, err := security.NewJWTokenService(suite.config, denylist)
	require.NoError(suite.T(), err)

	tokenString, err := service.GenerateToken(ctx, "user-123", "alice")
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), service.RevokeToken(ctx, tokenString))

	denylist.mu.Lock()
	defer denylist.mu.Unlock()
	for _, ttl := range denylist.revoked {
		assert.LessOrEqual(suite.T(), ttl, suite.config.AccessTokenTTL)
		assert.Greater(suite.T(), ttl, time.Duration(0))
	}
}

func (suite *JWTTestSuite) TestRevokeToken_NoDenylistIsNoOp() {
	ctx := context.Background()

	tokenString, err := suite.service.GenerateToken(ctx, "user-123", "alice")
	require.NoError(suite.T(), err)

	assert.NoError(suite.T(), suite.service.RevokeToken(ctx, tokenString))

	// Without a denylist, the token stays valid until expiry
	_, err = suite.service.ValidateToken(ctx, tokenString)
	assert.NoError(suite.T(), err)
}

func TestJWTTestSuite(t *testing.T) {
	suite.Run(t, new(JWTTestSuite))
}
