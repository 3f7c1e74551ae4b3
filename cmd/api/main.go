package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sticky-notes-api/internal/core/auth"
	"sticky-notes-api/internal/core/config"
	"sticky-notes-api/internal/core/database"
	"sticky-notes-api/internal/core/logger"
	"sticky-notes-api/internal/core/server"
	"sticky-notes-api/internal/domain"
	"sticky-notes-api/internal/media"
	"sticky-notes-api/internal/repo"
	"sticky-notes-api/internal/service"
	"sticky-notes-api/internal/transport/http/handler"
	"sticky-notes-api/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	// 数据库（失败直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	// 自动迁移（users.email 与 notes(user_id,title) 的唯一索引在这里建立）
	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(&domain.User{}, &domain.Note{}); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	// JWT：access / refresh 两套密钥
	jwter := &auth.JWTer{
		AccessSecret:  []byte(cfg.JWT.AccessSecret),
		RefreshSecret: []byte(cfg.JWT.RefreshSecret),
		Issuer:        cfg.JWT.Issuer,
		AccessTTL:     time.Duration(cfg.JWT.AccessTTLDay) * 24 * time.Hour,
		RefreshTTL:    time.Duration(cfg.JWT.RefreshTTLDay) * 24 * time.Hour,
	}

	// 图床（没配 cloud name 就禁用头像上传，其余功能不受影响）
	var mediaStore media.Store
	if cfg.Media.CloudName != "" {
		cld, err := media.NewCloudinary(media.Config{
			CloudName: cfg.Media.CloudName,
			APIKey:    cfg.Media.APIKey,
			APISecret: cfg.Media.APISecret,
			Folder:    cfg.Media.Folder,
			MaxSizeMB: cfg.Media.MaxSizeMB,
		})
		if err != nil {
			log.Fatal("cloudinary init failed", zap.Error(err))
		}
		mediaStore = cld
	} else {
		log.Warn("media host not configured, avatar upload disabled")
	}

	// 依赖
	userRepo := repo.NewUserRepo(db)
	noteRepo := repo.NewNoteRepo(db)
	userSvc := service.NewUserService(userRepo, jwter, mediaStore)
	noteSvc := service.NewNoteService(noteRepo)
	userH := handler.NewUserHandler(userSvc, log, cfg.App.Env, cfg.Upload.TempDir)
	noteH := handler.NewNoteHandler(noteSvc, log)

	// 路由
	r := router.NewAPIEngine(log, cfg, jwter, userH, noteH)

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("sticky notes api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1"),
	)

	// 异步启动
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("sticky notes api start FAILED", zap.Error(err))
		}
	}()
	log.Info("sticky notes api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("sticky notes api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
