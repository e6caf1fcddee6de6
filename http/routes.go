package http

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes sets up all routes for the server.
// All routes are defined in this single file for easy navigation.
func (s *Server) registerRoutes() {
	// Health check routes (public)
	s.echo.GET("/health", s.handleHealthCheck)
	s.echo.GET("/health/live", s.handleLivenessCheck)
	s.echo.GET("/health/ready", s.handleReadinessCheck)

	// Prometheus metrics (public)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Public auth routes
	auth := s.echo.Group("/api/auth")
	auth.POST("/login", s.handleLogin)

	// Protected routes (require authentication)
	protected := s.echo.Group("/api")
	protected.Use(s.RequireAuth())

	// Auth (authenticated)
	protected.POST("/auth/logout", s.handleLogout)
	protected.GET("/auth/me", s.handleMe)

	// Shops
	protected.POST("/shops", s.handleCreateShop)
	protected.GET("/shops/:id", s.handleGetShop)
	protected.PUT("/shops/:id", s.handleUpdateShop)

	// Users
	protected.POST("/users", s.handleCreateUser)
	protected.GET("/users", s.handleListUsers)
	protected.GET("/users/:id", s.handleGetUser)
	protected.PUT("/users/:id", s.handleUpdateUser)

	// Customers and vehicles
	protected.POST("/customers", s.handleCreateCustomer)
	protected.GET("/customers/:id", s.handleGetCustomer)
	protected.GET("/customers/:customerId/vehicles", s.handleListCustomerVehicles)
	protected.POST("/vehicles", s.handleCreateVehicle)
	protected.GET("/vehicles/:id", s.handleGetVehicle)

	// Inspections
	protected.POST("/inspections", s.handleCreateInspection)
	protected.GET("/inspections", s.handleListInspections)
	protected.GET("/inspections/:id", s.handleGetInspection)
	protected.DELETE("/inspections/:id", s.handleRetireInspection)

	// Workflow
	protected.POST("/inspections/:id/transitions", s.handleRequestTransition)
	protected.GET("/inspections/:id/transitions", s.handleListTransitions)
	protected.GET("/inspections/:id/denials", s.handleListDenials)
	protected.POST("/inspections/:id/urgency", s.handleRecomputeUrgency)

	// Inspection items
	protected.GET("/inspections/:id/items", s.handleListItems)
	protected.POST("/inspections/:id/items", s.handleCreateItem)
	protected.POST("/inspections/:id/items/template", s.handleSeedItems)
	protected.PUT("/items/:id", s.handleUpdateItem)
	protected.DELETE("/items/:id", s.handleDeleteItem)

	// Business rules
	protected.POST("/rules", s.handleCreateRule)
	protected.GET("/shops/:id/rules", s.handleListShopRules)
	protected.PUT("/rules/:id", s.handleUpdateRule)
	protected.DELETE("/rules/:id", s.handleDeleteRule)

	// Permission overrides
	protected.GET("/users/:id/permissions", s.handleListUserPermissions)
	protected.POST("/users/:id/permissions", s.handleCreateUserPermission)
	protected.DELETE("/users/:id/permissions/:permissionId", s.handleDeleteUserPermission)
	protected.POST("/permissions/cache/clear", s.handleClearPermissionCache)
}
