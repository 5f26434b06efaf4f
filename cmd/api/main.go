package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"vidgate/internal/config"
	"vidgate/internal/database"
	"vidgate/internal/extractor"
	"vidgate/internal/middleware"
	"vidgate/internal/modules/auth"
	"vidgate/internal/modules/stream"
	"vidgate/internal/modules/video"
	"vidgate/internal/pkg/token"
	"vidgate/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	historyRepo := repository.NewWatchHistoryRepository(db)

	authority := token.NewAuthority(
		token.Secrets{
			Access:   cfg.AccessSecret,
			Refresh:  cfg.RefreshSecret,
			Playback: cfg.PlaybackSecret,
			Internal: cfg.InternalSecret,
		},
		token.TTLs{
			Access:   cfg.AccessTTL,
			Refresh:  cfg.RefreshTTL,
			Playback: cfg.PlaybackTTL,
			Internal: cfg.InternalTTL,
		},
	)

	denylist := auth.NewDenylist()

	extractClient := extractor.NewHTTPClient(cfg.ExtractorURL, cfg.ExtractTimeout)
	locatorCache := extractor.NewURLCache(cfg.CacheTTL)
	resolver := extractor.NewResolver(extractClient, locatorCache)

	authService := auth.NewService(userRepo, authority, denylist)
	authHandler := auth.NewHandler(authService)

	videoService := video.NewService(videoRepo, historyRepo, authority)
	videoHandler := video.NewHandler(videoService)

	streamService := stream.NewService(authority, videoRepo, resolver, stream.Options{
		UserAgent:     cfg.UpstreamUserAgent,
		Referer:       cfg.UpstreamReferer,
		HeaderTimeout: cfg.UpstreamTimeout,
	})
	streamHandler := stream.NewHandler(streamService)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1)
		videoHandler.RegisterPublicRoutes(v1)
		streamHandler.RegisterPublicRoutes(v1)

		// protected
		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(authority, denylist))
		{
			authHandler.RegisterProtectedRoutes(protected)
			videoHandler.RegisterProtectedRoutes(protected)
		}
	}

	log.Printf("listening addr=:%s env=%s", cfg.Port, cfg.AppEnv)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
