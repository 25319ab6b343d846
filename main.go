package main

import (
	"context"
	"fmt"
	"os"

	"vidtube/pkg/media"
	"vidtube/pkg/toggle"
	"vidtube/pkg/token"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// Auto-load ./.env if present before reading vars
	loadDotEnv()
	cfg := loadConfig()

	log := newLogger()
	defer log.Sync()

	db, err := openDB(cfg, log)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}

	// Lightweight migrate command: `./vidtube migrate` runs AutoMigrate and
	// exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := migrate(db, log); err != nil {
			log.Fatal("migration failed", zap.Error(err))
		}
		fmt.Println("migration completed")
		return
	}

	a, err := newApp(cfg, db, log)
	if err != nil {
		log.Fatal("app init failed", zap.Error(err))
	}

	if cfg.MediaWatch {
		if disk, ok := a.media.(*media.Disk); ok {
			w := media.NewWatcher(disk, 2, log)
			go func() {
				if err := w.Run(context.Background()); err != nil && err != context.Canceled {
					log.Warn("media watcher stopped", zap.Error(err))
				}
			}()
		}
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log), corsMiddleware(cfg.CORSOrigin))
	setupRoutes(r, a)

	log.Info("listening", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger() *zap.Logger {
	if gin.Mode() == gin.ReleaseMode {
		if log, err := zap.NewProduction(); err == nil {
			return log
		}
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func newApp(cfg Config, db *gorm.DB, log *zap.Logger) (*app, error) {
	creds := &gormCredentials{db: db}
	tokens, err := token.NewService(token.Config{
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
		Issuer:        cfg.Issuer,
	}, creds)
	if err != nil {
		return nil, err
	}

	var opts []toggle.Option
	if cfg.ToggleLocking {
		opts = append(opts, toggle.WithLocking())
	}
	engine := toggle.NewEngine(&gormGraph{db: db}, opts...)

	host, err := media.NewDisk(cfg.MediaBase, cfg.MediaURL, log)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		db:     db,
		log:    log,
		tokens: tokens,
		creds:  creds,
		engine: engine,
		media:  host,
	}, nil
}
