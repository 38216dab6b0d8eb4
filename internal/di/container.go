package di

import (
	"context"
	"fmt"
	"sync"
	"time"

	"kbadmin/internal/auth"
	"kbadmin/internal/auth/config"
	"kbadmin/internal/knowledgebase"
	"kbadmin/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container wires the application modules and manages their lifecycle.
type Container struct {
	mu sync.RWMutex

	// Module instances
	AuthModule          *auth.AuthModule
	KnowledgeBaseModule *knowledgebase.KnowledgeBaseModule

	// Infrastructure
	MongoDB     *mongo.Database
	RedisClient *redis.Client

	// Configuration
	AuthConfig *config.Config

	// Logger
	Logger logger.Logger
}

// NewContainer creates a new DI container
func NewContainer() *Container {
	return &Container{}
}

// InitializeAuth initializes the authentication module
func (c *Container) InitializeAuth(mongoDB *mongo.Database, redisClient *redis.Client, authConfig *config.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.MongoDB = mongoDB
	c.RedisClient = redisClient
	c.AuthConfig = authConfig

	if c.Logger == nil {
		c.Logger = logger.NewLogger()
	}

	authModule, err := auth.NewAuthModule(mongoDB, redisClient, authConfig, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create auth module: %w", err)
	}

	c.AuthModule = authModule
	return nil
}

// InitializeKnowledgeBase initializes the knowledge base module. The auth
// module must be initialized first; its middleware guards all routes.
func (c *Container) InitializeKnowledgeBase() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.AuthModule == nil {
		return fmt.Errorf("auth module must be initialized before knowledge base module")
	}
	if c.MongoDB == nil {
		return fmt.Errorf("MongoDB must be initialized before knowledge base module")
	}

	kbModule, err := knowledgebase.NewKnowledgeBaseModule(c.MongoDB)
	if err != nil {
		return fmt.Errorf("failed to create knowledge base module: %w", err)
	}

	c.KnowledgeBaseModule = kbModule
	return nil
}

// GetAuthModule returns the auth module instance
func (c *Container) GetAuthModule() *auth.AuthModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AuthModule
}

// GetKnowledgeBaseModule returns the knowledge base module instance
func (c *Container) GetKnowledgeBaseModule() *knowledgebase.KnowledgeBaseModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.KnowledgeBaseModule
}

// HealthCheck verifies the backing services are reachable
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.MongoDB != nil {
		if err := c.MongoDB.Client().Ping(ctx, nil); err != nil {
			return fmt.Errorf("MongoDB health check failed: %w", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("Redis health check failed: %w", err)
		}
	}

	return nil
}

// Cleanup shuts the modules down in reverse order of initialization
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error

	if c.KnowledgeBaseModule != nil {
		if err := c.KnowledgeBaseModule.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop knowledge base module: %w", err))
		}
		c.KnowledgeBaseModule = nil
	}

	if c.AuthModule != nil {
		if err := c.AuthModule.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop auth module: %w", err))
		}
		c.AuthModule = nil
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis client: %w", err))
		}
		c.RedisClient = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}
	return nil
}

// Close gracefully shuts down all services in the container with a timeout
func (c *Container) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return c.Cleanup(ctx)
}
