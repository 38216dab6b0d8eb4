package auth

import (
	"fmt"

	authhttp "kbadmin/internal/auth/adapter/http"
	"kbadmin/internal/auth/adapter/persistence/mongodb"
	"kbadmin/internal/auth/adapter/security"
	"kbadmin/internal/auth/config"
	"kbadmin/internal/auth/domain/repository"
	"kbadmin/internal/auth/usecase"
	"kbadmin/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// AuthModule represents the complete authentication module
type AuthModule struct {
	repository repository.UserRepository
	tokenSvc   repository.TokenService
	usecase    usecase.AuthUsecaseInterface
	handler    *authhttp.AuthHTTPHandler
	config     *config.Config
}

// NewAuthModule creates a new authentication module instance. The Redis client
// is optional; without it logout is client-side discard only.
func NewAuthModule(db *mongo.Database, redisClient *redis.Client, cfg *config.Config, log logger.Logger) (*AuthModule, error) {
	userRepo, err := mongodb.NewMongoUserRepository(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create user repository: %w", err)
	}

	var denylist repository.TokenDenylist
	if redisClient != nil {
		denylist = security.NewRedisTokenDenylist(redisClient, log.WithComponent("token_denylist"))
	}

	tokenSvc, err := security.NewJWTokenService(cfg, denylist)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	authUsecase := usecase.NewAuthUsecase(userRepo, tokenSvc)

	handler := authhttp.NewAuthHTTPHandler(
		authUsecase,
		cfg.CookieName,
		cfg.CookiePath,
		cfg.CookieDomain,
		int(cfg.AccessTokenTTL.Seconds()),
		cfg.CookieSecure,
		cfg.CookieHTTPOnly,
		cfg.CookieSameSite,
	)

	return &AuthModule{
		repository: userRepo,
		tokenSvc:   tokenSvc,
		usecase:    authUsecase,
		handler:    handler,
		config:     cfg,
	}, nil
}

// RegisterRoutes registers authentication routes under /auth
func (am *AuthModule) RegisterRoutes(router fiber.Router) {
	middleware := am.GetMiddleware()
	group := router.Group("/auth", middleware.RateLimiter())
	am.handler.SetupAuthRoutesWithMiddleware(group, middleware)
}

// GetUsecase returns the auth usecase for external access
func (am *AuthModule) GetUsecase() usecase.AuthUsecaseInterface {
	return am.usecase
}

// GetMiddleware returns the auth middleware
func (am *AuthModule) GetMiddleware() *authhttp.AuthMiddleware {
	return authhttp.NewAuthMiddleware(am.usecase, am.config.CookieName)
}

// Stop performs cleanup when the module is shut down
func (am *AuthModule) Stop() error {
	return nil
}
