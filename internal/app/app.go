package app

import (
	"database/sql"
	"errors"

	"go-employee-mgmt/internal/config"
	"go-employee-mgmt/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the process-wide resources opened at startup.
type App struct {
	Router *gin.Engine
	GormDB *gorm.DB
	DB     *sql.DB
	Redis  *redis.Client
}

// OpenDatabase connects with retries and returns both the gorm handle and
// the pool under it. Services start transactions on the pool.
func OpenDatabase(cfg config.DBConfig) (*gorm.DB, *sql.DB, error) {
	gormDB, err := connection.ConnectGORMWithRetry(cfg.DSN(), cfg.MaxRetries)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, err
	}
	return gormDB, sqlDB, nil
}

// OpenRedis returns nil without error when no address is configured.
func OpenRedis(cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	return connection.ConnectRedisWithRetry(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}, 5)
}

func BuildApp(cfg *config.Config) (*App, error) {
	logger := zap.L().Named("app")

	gormDB, sqlDB, err := OpenDatabase(cfg.DB)
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established")

	rdb, err := OpenRedis(cfg.Redis)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	if rdb == nil {
		logger.Warn("REDIS_ADDR not set, job cache and token revocation disabled")
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := NewRouter(cfg, sqlDB, gormDB, rdb, zap.L())
	if err != nil {
		sqlDB.Close()
		if rdb != nil {
			rdb.Close()
		}
		return nil, err
	}

	return &App{
		Router: router,
		GormDB: gormDB,
		DB:     sqlDB,
		Redis:  rdb,
	}, nil
}

// Close releases the pool and the redis client.
func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
