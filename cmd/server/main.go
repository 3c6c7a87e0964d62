package main

import (
	"fmt"
	"log"

	"github.com/teamofroman/hw05-final/internal/cache"
	"github.com/teamofroman/hw05-final/internal/config"
	"github.com/teamofroman/hw05-final/internal/domain"
	"github.com/teamofroman/hw05-final/internal/handler"
	"github.com/teamofroman/hw05-final/internal/media"
	"github.com/teamofroman/hw05-final/internal/repository"
	"github.com/teamofroman/hw05-final/internal/service"
	"github.com/teamofroman/hw05-final/pkg/database"
	pkglog "github.com/teamofroman/hw05-final/pkg/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: "postline",
	})
	logger := pkglog.L()

	db, err := database.New(&database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		FilePath:        cfg.Database.FilePath,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.AutoMigrate(db,
		&domain.User{},
		&domain.Group{},
		&domain.Post{},
		&domain.Comment{},
		&domain.Follow{},
		&domain.Session{},
		&domain.PasswordResetToken{},
	); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Msg("database migration completed")

	var pageCache cache.PageCache
	if cfg.Redis.Address != "" {
		pageCache, err = cache.NewRedisPageCache(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, "page")
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		logger.Info().Str("address", cfg.Redis.Address).Msg("page cache backed by redis")
	} else {
		pageCache = cache.NewMemoryPageCache()
		logger.Info().Msg("page cache held in process memory")
	}

	mediaStore, err := media.NewStore(cfg.Media.Dir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare media dir")
	}

	userRepo := repository.NewGormUserRepository(db)
	groupRepo := repository.NewGormGroupRepository(db)
	postRepo := repository.NewGormPostRepository(db)
	commentRepo := repository.NewGormCommentRepository(db)
	followRepo := repository.NewGormFollowRepository(db)
	sessionRepo := repository.NewGormSessionRepository(db)
	tokenRepo := repository.NewGormResetTokenRepository(db)

	h := handler.New(handler.Options{
		Auth:       service.NewAuthService(userRepo, sessionRepo, tokenRepo, cfg.Session.Lifetime),
		Blog:       service.NewBlogService(postRepo, groupRepo, commentRepo, cfg.Pages.PostsPerPage),
		Social:     service.NewSocialService(followRepo, postRepo, cfg.Pages.PostsPerPage),
		Users:      userRepo,
		PageCache:  pageCache,
		CacheTTL:   cfg.Cache.TTL,
		MediaStore: mediaStore,
		CookieName: cfg.Session.CookieName,
	})

	router, err := handler.NewRouter(h, "./web/templates", logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build router")
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info().Str("addr", addr).Str("driver", cfg.Database.Driver).Msg("postline starting")
	if err := router.Run(addr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
