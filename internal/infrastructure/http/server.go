package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	handlers "github.com/faithflow/pledge-service/internal/adapter/handler/http"
	"github.com/faithflow/pledge-service/internal/config"
	"github.com/faithflow/pledge-service/internal/infrastructure/database"
	"github.com/faithflow/pledge-service/internal/infrastructure/provider/momo"
	"github.com/faithflow/pledge-service/internal/middleware/auth"
	"github.com/faithflow/pledge-service/internal/usecase"
)

type Server struct {
	config *config.Config
	logger *zap.Logger
	echo   *echo.Echo
	repos  *database.Repositories
}

// requestValidator adapts go-playground/validator to echo's Validator interface
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func NewServer(cfg *config.Config, logger *zap.Logger, repos *database.Repositories) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.Service.ClientURL},
		AllowMethods: []string{echo.GET, echo.POST, echo.PATCH, echo.DELETE},
	}))

	return &Server{
		config: cfg,
		logger: logger,
		echo:   e,
		repos:  repos,
	}
}

func (s *Server) Start() error {
	// Setup routes
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	// Gateway client and services
	gateway := momo.NewGateway(&s.config.Service.Momo, s.logger)

	pledgeService := usecase.NewPledgeService(s.repos.Pledge, s.repos.Campaign, s.logger)
	intentService := usecase.NewPaymentIntentService(s.repos.Pledge, s.repos.PaymentAttempt, gateway, s.config.Service.DedupWindow, s.logger)
	reconciliationService := usecase.NewReconciliationService(s.repos.Reconciliation, s.logger)
	auditService := usecase.NewAuditService(s.repos.AuditLog, s.logger)

	// Handlers
	pledgeHandler := handlers.NewPledgeHandler(s.logger, pledgeService)
	paymentHandler := handlers.NewPaymentHandler(s.logger, intentService)
	callbackHandler := handlers.NewCallbackHandler(s.logger, gateway, reconciliationService)
	auditHandler := handlers.NewAuditHandler(s.logger, auditService)

	// Gateway outcome notifications authenticate by signature, not JWT
	s.echo.POST("/callbacks/momo", callbackHandler.HandleCallback)

	// JWT middleware configuration
	jwtConfig := auth.JWTConfig{
		Secret: s.config.Service.JWTSecret,
		Logger: s.logger,
		SkipPaths: []string{
			"/health",
			"/callbacks/momo",
		},
	}

	// API v1 routes (all require JWT authentication)
	v1 := s.echo.Group("/api/v1", auth.JWTMiddleware(jwtConfig))

	// Pledge lifecycle
	pledges := v1.Group("/pledges")
	pledges.POST("", pledgeHandler.CreatePledge)
	pledges.GET("", pledgeHandler.ListPledges)
	pledges.GET("/:id", pledgeHandler.GetPledge)
	pledges.PATCH("/:id", pledgeHandler.UpdatePledge)
	pledges.POST("/:id/cancel", pledgeHandler.CancelPledge)
	pledges.DELETE("/:id", pledgeHandler.DeletePledge)

	// Payments against a pledge
	pledges.POST("/:id/payments", paymentHandler.InitiatePayment)
	pledges.POST("/:id/contributions", pledgeHandler.RecordContribution)

	// Attempt lookup by transaction id
	v1.GET("/payments/:id", paymentHandler.GetAttempt)

	// Installment schedule preview
	v1.GET("/plan-preview", pledgeHandler.PlanPreview)

	// Audit trail (admin only, enforced by the handler)
	v1.GET("/audit", auditHandler.ListEntries)
}
