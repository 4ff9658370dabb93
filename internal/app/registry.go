package app

import (
	"database/sql"
	"net/http"

	"go-employee-mgmt/internal/auth"
	"go-employee-mgmt/internal/auth/token"
	"go-employee-mgmt/internal/config"
	"go-employee-mgmt/internal/employee"
	"go-employee-mgmt/internal/job"
	"go-employee-mgmt/internal/messaging/kafka"
	"go-employee-mgmt/internal/middleware"
	"go-employee-mgmt/internal/rbac"
	"go-employee-mgmt/internal/rbac/infra"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewRouter wires every module onto a fresh gin engine. rdb may be nil.
func NewRouter(
	cfg *config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) (*gin.Engine, error) {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.ContextLogger(logger),
		middleware.AccessLog(),
	)

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Employee management API is running")
	})

	if err := registerModules(router, cfg, db, gormDB, rdb); err != nil {
		return nil, err
	}
	return router, nil
}

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	authRepo := auth.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	jobRepo := job.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(rbac.DefaultRules())
	if err != nil {
		return err
	}
	policy := rbac.NewService(enforcer)

	var revocations auth.RevocationStore
	if rdb != nil {
		revocations = auth.NewRedisRevocationStore(rdb)
	}
	tokens := token.NewManager(cfg.JWT.Secret, cfg.JWT.Expiration)

	// --- Services ---
	authService := auth.NewService(authRepo, tokens, revocations, cfg.App.BcryptCost)
	employeeService := employee.NewService(db, employeeRepo, authRepo, policy, outboxRepo, cfg.App.BcryptCost)
	jobService := job.NewService(jobRepo, policy, rdb)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	employeeHandler := employee.NewHandler(employeeService)
	jobHandler := job.NewHandler(jobService)

	// --- Routes Registration ---
	api := router.Group("/api")
	{
		auth.RegisterRoutes(api, authHandler, authService)
		employee.RegisterRoutes(api, employeeHandler, authService, policy)
		job.RegisterRoutes(api, jobHandler, authService)
	}

	return nil
}
