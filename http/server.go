package http

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dukerupert/shopwrench"
	"github.com/dukerupert/shopwrench/internal/audit"
	"github.com/dukerupert/shopwrench/internal/authz"
	"github.com/dukerupert/shopwrench/internal/validation"
)

// DenialReader reads the transition denial log.
type DenialReader interface {
	FindDenialsByInspection(ctx context.Context, inspectionID uuid.UUID, limit, offset int) ([]audit.DenialEntry, error)
	FindDenialsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]audit.DenialEntry, error)
}

// Server represents the HTTP server with all its dependencies.
type Server struct {
	echo   *echo.Echo
	ln     net.Listener
	logger *slog.Logger

	// Configuration
	Addr   string
	Domain string

	// Session configuration
	SessionDuration time.Duration
	SessionSecure   bool

	// Domain services
	shopService       shopwrench.ShopService
	userService       shopwrench.UserService
	customerService   shopwrench.CustomerService
	vehicleService    shopwrench.VehicleService
	inspectionService shopwrench.InspectionService
	itemService       shopwrench.ItemService
	ruleService       shopwrench.RuleService
	permissionService shopwrench.PermissionService
	transitionService shopwrench.TransitionRecordService
	sessionService    shopwrench.SessionService
	workflowService   shopwrench.WorkflowService

	// Authorization and audit
	authz   *authz.Checker
	denials DenialReader
}

// Config holds the configuration for creating a new Server.
type Config struct {
	Addr   string
	Domain string
	Logger *slog.Logger

	// Session configuration
	SessionDuration time.Duration
	SessionSecure   bool

	// Domain services
	ShopService       shopwrench.ShopService
	UserService       shopwrench.UserService
	CustomerService   shopwrench.CustomerService
	VehicleService    shopwrench.VehicleService
	InspectionService shopwrench.InspectionService
	ItemService       shopwrench.ItemService
	RuleService       shopwrench.RuleService
	PermissionService shopwrench.PermissionService
	TransitionService shopwrench.TransitionRecordService
	SessionService    shopwrench.SessionService
	WorkflowService   shopwrench.WorkflowService

	// Authorization and audit
	Authz   *authz.Checker
	Denials DenialReader
}

// NewServer creates a new HTTP server with the given configuration.
func NewServer(cfg Config) *Server {
	s := &Server{
		Addr:              cfg.Addr,
		Domain:            cfg.Domain,
		logger:            cfg.Logger,
		SessionDuration:   cfg.SessionDuration,
		SessionSecure:     cfg.SessionSecure,
		shopService:       cfg.ShopService,
		userService:       cfg.UserService,
		customerService:   cfg.CustomerService,
		vehicleService:    cfg.VehicleService,
		inspectionService: cfg.InspectionService,
		itemService:       cfg.ItemService,
		ruleService:       cfg.RuleService,
		permissionService: cfg.PermissionService,
		transitionService: cfg.TransitionService,
		sessionService:    cfg.SessionService,
		workflowService:   cfg.WorkflowService,
		authz:             cfg.Authz,
		denials:           cfg.Denials,
	}

	// Set default session duration if not specified
	if s.SessionDuration == 0 {
		s.SessionDuration = 24 * time.Hour
	}

	s.echo = echo.New()
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Validator = validation.NewValidator()

	// Register middleware and routes
	s.registerMiddleware()
	s.registerRoutes()

	return s
}

// Echo returns the underlying Echo instance.
// Use sparingly - prefer registering routes through Server methods.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Open starts the HTTP server.
func (s *Server) Open() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.ln = ln

	go func() {
		if err := s.echo.Server.Serve(s.ln); err != nil {
			s.logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	s.logger.Info("server started", slog.String("addr", s.Addr))
	return nil
}

// Close gracefully shuts down the HTTP server.
func (s *Server) Close(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// URL returns the URL of the server.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}
