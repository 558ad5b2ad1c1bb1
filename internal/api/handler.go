package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"pharmacy-storefront/config"
	"pharmacy-storefront/internal/models"
	"pharmacy-storefront/internal/service"
	"pharmacy-storefront/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Services groups the use cases the HTTP layer dispatches to
type Services struct {
	Auth       *service.AuthService
	Catalog    *service.CatalogService
	Cart       *service.CartService
	Checkout   *service.CheckoutService
	Orders     *service.OrderService
	Reminders  *service.ReminderService
	Backoffice *service.BackofficeService
}

// ReadinessCheck reports whether a dependency can serve traffic
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handler contains HTTP handlers
type Handler struct {
	svc    Services
	cfg    *config.Config
	checks []ReadinessCheck
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(svc Services, cfg *config.Config, checks ...ReadinessCheck) *Handler {
	return &Handler{
		svc:    svc,
		cfg:    cfg,
		checks: checks,
		logger: util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(requestLogger(h.logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     h.cfg.Security.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Location", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(limitBody(h.cfg.Security.MaxRequestBodyKB << 10))

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group(h.cfg.Server.BasePath)
	v1.Use(h.authenticate())
	{
		auth := v1.Group("/auth")
		limited := auth.Group("", rateLimiter(h.cfg.Security.AuthRateLimit, h.cfg.Security.AuthRateWindow))
		limited.POST("/register", h.register)
		limited.POST("/login", h.login)
		auth.POST("/logout", h.logout)
		auth.GET("/me", h.requireLogin(), h.me)

		v1.GET("/home", h.home)
		v1.GET("/categories", h.listCategories)
		v1.GET("/categories/:id/medicines", h.listCategoryMedicines)
		v1.GET("/medicines", h.listMedicines)
		v1.GET("/medicines/:id", h.getMedicine)
		v1.GET("/search", h.search)

		user := v1.Group("", h.requireLogin())
		user.GET("/cart", h.viewCart)
		user.POST("/cart/add/:medicine_id", h.addToCart)
		user.POST("/cart/update/:item_id", h.updateCartLine)
		user.POST("/cart/remove/:item_id", h.removeCartLine)

		user.GET("/checkout", h.prepareCheckout)
		user.POST("/checkout", h.placeOrder)

		user.GET("/orders", h.listOrders)
		user.GET("/orders/:id", h.getOrder)
		user.GET("/orders/:id/confirmation", h.orderConfirmation)

		user.GET("/reminders", h.listReminders)
		user.POST("/reminders/add", h.addReminder)
		user.POST("/reminders/update/:id", h.updateReminder)
		user.POST("/reminders/delete/:id", h.deleteReminder)

		staff := v1.Group("/dashboard", h.requireLogin(), h.requireStaff())
		staff.GET("", h.dashboard)
		staff.GET("/medicines", h.adminListMedicines)
		staff.POST("/medicines/add", h.adminCreateMedicine)
		staff.GET("/medicines/edit/:id", h.adminGetMedicine)
		staff.POST("/medicines/edit/:id", h.adminUpdateMedicine)
		staff.POST("/medicines/delete/:id", h.adminDeleteMedicine)
		staff.GET("/medicines/export", h.adminExportMedicines)
		staff.GET("/categories", h.adminListCategories)
		staff.POST("/categories/add", h.adminCreateCategory)
		staff.POST("/categories/delete/:id", h.adminDeleteCategory)
		staff.GET("/orders", h.adminListOrders)
		staff.POST("/orders/:id/update", h.adminUpdateOrderStatus)
		staff.GET("/users", h.adminListUsers)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports ready only when every dependency answers
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := gin.H{}
	for _, check := range h.checks {
		if err := check.Check(ctx); err != nil {
			failed[check.Name] = err.Error()
		}
	}
	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"failed": failed,
			"time":   time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) path(p string) string {
	return h.cfg.Server.BasePath + p
}

func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		return v.(*models.User)
	}
	return nil
}

func actor(c *gin.Context) service.Actor {
	return service.ActorFor(currentUser(c))
}

func staffCapability(c *gin.Context) service.StaffCapability {
	return c.MustGet(staffKey).(service.StaffCapability)
}

// paramID parses a positive integer path parameter
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
		})
		return 0, false
	}
	return id, true
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
