package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authhttp "kbadmin/internal/auth/adapter/http"
	"kbadmin/internal/auth/adapter/persistence/memory"
	"kbadmin/internal/auth/adapter/security"
	"kbadmin/internal/auth/config"
	"kbadmin/internal/auth/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// AuthFlowTestSuite exercises the full register/login/profile flow with the
// real usecase, in-memory user store and HS256 token service wired together.
type AuthFlowTestSuite struct {
	suite.Suite
	app *fiber.App
}

func (suite *AuthFlowTestSuite) SetupTest() {
	repo := memory.NewInMemoryUserRepository()

	cfg := &config.Config{
		JWTSecretKey:   "flow-test-secret",
		JWTIssuer:      "kbadmin-test",
		AccessTokenTTL: 15 * time.Minute,
	}
	tokenSvc, err := security.NewJWTokenService(cfg, nil)
	require.NoError(suite.T(), err)

	uc := usecase.NewAuthUsecase(repo, tokenSvc)

	handler := authhttp.NewAuthHTTPHandler(uc, "auth_token", "/", "", 900, false, true, "Lax")
	middleware := authhttp.NewAuthMiddleware(uc, "auth_token")

	suite.app = fiber.New()
	authGroup := suite.app.Group("/auth")
	handler.SetupAuthRoutesWithMiddleware(authGroup, middleware)
}

func (suite *AuthFlowTestSuite) postJSON(path string, payload any) *http.Response {
	body, err := json.Marshal(payload)
	require.NoError(suite.T(), err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	return resp
}

func (suite *AuthFlowTestSuite) TestRegisterLoginProfile() {
	// Register a fresh account.
	resp := suite.postJSON("/auth/register", fiber.Map{
		"username": "alice",
		"password": "pw123",
	})
	defer resp.Body.Close()
	require.Equal(suite.T(), fiber.StatusCreated, resp.StatusCode)

	// Log in with the same credentials.
	resp = suite.postJSON("/auth/login", fiber.Map{
		"username": "alice",
		"password": "pw123",
	})
	defer resp.Body.Close()
	require.Equal(suite.T(), fiber.StatusOK, resp.StatusCode)

	var loginBody struct {
		AccessToken string `json:"access_token"`
		User        struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	}
	require.NoError(suite.T(), json.NewDecoder(resp.Body).Decode(&loginBody))
	require.NotEmpty(suite.T(), loginBody.AccessToken)
	assert.Equal(suite.T(), "alice", loginBody.User.Username)

	// Fetch the profile using the issued token.
	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+loginBody.AccessToken)
	profileResp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	defer profileResp.Body.Close()
	require.Equal(suite.T(), fiber.StatusOK, profileResp.StatusCode)

	var profile struct {
		UserID   string `json:"userID"`
		Username string `json:"username"`
	}
	require.NoError(suite.T(), json.NewDecoder(profileResp.Body).Decode(&profile))
	assert.Equal(suite.T(), loginBody.User.ID, profile.UserID)
	assert.Equal(suite.T(), "alice", profile.Username)
}

func (suite *AuthFlowTestSuite) TestLoginWrongPassword() {
	resp := suite.postJSON("/auth/register", fiber.Map{
		"username": "alice",
		"password": "pw123",
	})
	defer resp.Body.Close()
	require.Equal(suite.T(), fiber.StatusCreated, resp.StatusCode)

	resp = suite.postJSON("/auth/login", fiber.Map{
		"username": "alice",
		"password": "wrong",
	})
	defer resp.Body.Close()
	assert.Equal(suite.T(), fiber.StatusUnauthorized, resp.StatusCode)
}

func (suite *AuthFlowTestSuite) TestLoginUnknownUserMatchesWrongPassword() {
	resp := suite.postJSON("/auth/register", fiber.Map{
		"username": "alice",
		"password": "pw123",
	})
	defer resp.Body.Close()
	require.Equal(suite.T(), fiber.StatusCreated, resp.StatusCode)

	unknownResp := suite.postJSON("/auth/login", fiber.Map{
		"username": "nobody",
		"password": "pw123",
	})
	defer unknownResp.Body.Close()

	wrongResp := suite.postJSON("/auth/login", fiber.Map{
		"username": "alice",
		"password": "bad",
	})
	defer wrongResp.Body.Close()

	// Unknown account and wrong password are indistinguishable to the caller.
	assert.Equal(suite.T(), fiber.StatusUnauthorized, unknownResp.StatusCode)
	assert.Equal(suite.T(), fiber.StatusUnauthorized, wrongResp.StatusCode)

	var unknownBody, wrongBody map[string]string
	require.NoError(suite.T(), json.NewDecoder(unknownResp.Body).Decode(&unknownBody))
	require.NoError(suite.T(), json.NewDecoder(wrongResp.Body).Decode(&wrongBody))
	assert.Equal(suite.T(), unknownBody["error"], wrongBody["error"])
}

func (suite *AuthFlowTestSuite) TestDuplicateRegistration() {
	resp := suite.postJSON("/auth/register", fiber.Map{
		"username": "alice",
		"password": "pw123",
	})
	defer resp.Body.Close()
	require.Equal(suite.T(), fiber.StatusCreated, resp.StatusCode)

	resp = suite.postJSON("/auth/register", fiber.Map{
		"username": "alice",
		"password": "other",
	})
	defer resp.Body.Close()
	assert.Equal(suite.T(), fiber.StatusConflict, resp.StatusCode)
}

func TestAuthFlowTestSuite(t *testing.T) {
	suite.Run(t, new(AuthFlowTestSuite))
}
