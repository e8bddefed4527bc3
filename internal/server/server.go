package server

import (
	"net/http"
	"time"

	"kollektivet/internal/config"
	"kollektivet/internal/handler"
	"kollektivet/internal/middleware"
	"kollektivet/internal/oauth"
	"kollektivet/internal/repository"
	"kollektivet/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

type Server struct {
	router   *gin.Engine
	db       *sqlx.DB
	cfg      *config.Config
	logger   *zap.Logger
	log      *logrus.Logger
	notifier service.Notifier
}

func NewServer(db *sqlx.DB, cfg *config.Config, logger *zap.Logger, notifier service.Notifier) *Server {
	router := gin.Default()

	s := &Server{
		router:   router,
		db:       db,
		cfg:      cfg,
		logger:   logger,
		log:      logrus.New(),
		notifier: notifier,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	userRepo := repository.NewUserRepository(s.db, s.logger)
	quoteRepo := repository.NewQuoteRepository(s.db, s.logger)

	google := oauth.NewGoogleClient(
		s.cfg.Auth.Google.ClientID,
		s.cfg.Auth.Google.ClientSecret,
		s.cfg.Auth.Google.RedirectURL,
	)

	secret := []byte(s.cfg.Auth.JWTSecret)
	tokenTTL := time.Duration(s.cfg.Auth.TokenTTLHours) * time.Hour

	authService := service.NewAuthService(userRepo, google, secret, tokenTTL, s.logger)
	quoteService := service.NewQuoteService(quoteRepo, s.notifier, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.cfg.Server.SignInPage, s.log)
	quoteHandler := handler.NewQuoteHandler(quoteService, s.log)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Authentication routes
	authGroup := s.router.Group("/api/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/google", authHandler.GoogleRedirect)
	authGroup.GET("/google/callback", authHandler.GoogleCallback)

	// Authenticated routes
	authRequired := s.router.Group("/api")
	authRequired.Use(middleware.AuthMiddleware(secret, s.cfg.Server.SignInPage, s.logger))
	{
		authRequired.POST("/auth/logout", authHandler.Logout)
		authRequired.GET("/quotes", quoteHandler.List)
		authRequired.POST("/quotes", quoteHandler.Create)
		authRequired.PUT("/quotes/:id", quoteHandler.Update)
		authRequired.DELETE("/quotes/:id", quoteHandler.Delete)
	}
}

func (s *Server) Run(addr string) {
	s.log.Infof("Server starting on port %s...", addr)
	if err := s.router.Run(addr); err != nil {
		s.log.Fatalf("Server failed to start: %v", err)
	}
}
