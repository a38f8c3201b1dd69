package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nexmeet/backend/internal/config"
	"github.com/nexmeet/backend/internal/handlers"
	"github.com/nexmeet/backend/internal/media"
	"github.com/nexmeet/backend/internal/repositories"
	"github.com/nexmeet/backend/internal/routes"
	"github.com/nexmeet/backend/internal/services"
	ws "github.com/nexmeet/backend/internal/websocket"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := repositories.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	userRepo := repositories.NewUserRepository(db)
	meetingRepo := repositories.NewMeetingRepository(db)
	participantRepo := repositories.NewParticipantRepository(db)

	roomRegistry := media.NewRegistry()
	roomService := media.NewNodeClient(cfg.MediaNodeURL, cfg.MediaTimeout, roomRegistry)

	hub := ws.NewHub()

	meetingService := services.NewMeetingService(meetingRepo, participantRepo, userRepo, roomService, hub)
	admissionService := services.NewAdmissionService(meetingRepo, participantRepo, userRepo, roomService, hub)
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	meetingHandler := handlers.NewMeetingHandler(meetingService, admissionService)
	authHandler := handlers.NewAuthHandler(authService, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cfg.CookieSecure)
	wsHandler := handlers.NewWebSocketHandler(hub)
	healthHandler := handlers.NewHealthHandler(db, roomService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	routes.RegisterPublicEndpoints(router, authHandler, wsHandler, healthHandler, cfg.JWTSecret)
	routes.RegisterProtectedEndpoints(router, meetingHandler, cfg.JWTSecret)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
