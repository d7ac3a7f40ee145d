package httppresentation

import (
	"net/http"

	"github.com/Zhima-Mochi/minimarket/internal/application/auth"
	"github.com/Zhima-Mochi/minimarket/internal/application/catalog"
	"github.com/Zhima-Mochi/minimarket/internal/application/dashboard"
	appinventory "github.com/Zhima-Mochi/minimarket/internal/application/inventory"
	apporder "github.com/Zhima-Mochi/minimarket/internal/application/order"
	appreview "github.com/Zhima-Mochi/minimarket/internal/application/review"
	"github.com/Zhima-Mochi/minimarket/internal/application/shipping"
	"github.com/Zhima-Mochi/minimarket/internal/domain/user"
	"github.com/Zhima-Mochi/minimarket/internal/observability"
	"github.com/gin-gonic/gin"
)

const (
	componentHTTPHandler  = "http_server"
	headerRequestID       = "X-Request-ID"
	defaultMaxUploadBytes = 5 << 20
)

// Services are the use cases the HTTP API exposes.
type Services struct {
	Auth        *auth.Service
	Catalog     *catalog.Service
	Stock       *appinventory.AdjustStockUseCase
	Checkout    *apporder.PlaceOrderUseCase
	Orders      *apporder.QueryService
	Shipping    *shipping.UpdateStatusUseCase
	Reviews     *appreview.CreateReviewUseCase
	ReviewQuery *appreview.QueryService
	Dashboard   *dashboard.Service
}

type Options struct {
	// Metrics, when set, is served on GET /metrics.
	Metrics http.Handler
	// UploadDir, when set, serves stored product images under /products.
	UploadDir      string
	MaxUploadBytes int64
}

type Handler struct {
	svc  Services
	opts Options
	log  observability.Logger
	tel  observability.Observability

	httpRequests observability.Counter   // http_requests_total{method,route,status}
	httpDuration observability.Histogram // http_request_duration_seconds{method,route,status}
}

func NewHandler(svc Services, opts Options, tel observability.Observability) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	useWireFieldNames()
	metrics := observability.MetricsOf(tel)
	return &Handler{
		svc:          svc,
		opts:         opts,
		log:          observability.LoggerOf(tel).With(observability.F("component", componentHTTPHandler)),
		tel:          tel,
		httpRequests: metrics.Counter(observability.MHTTPRequests),
		httpDuration: metrics.Histogram(observability.MHTTPRequestDuration),
	}
}

// Router wires every route behind Trace → Request Logger → Metrics → Access Log → Recovery.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(h.withTrace(), h.withRequestLogger(), h.withHTTPMetrics(), h.withAccessLog(), h.withRecovery())

	r.GET("/health", h.handleHealth)
	if h.opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.opts.Metrics))
	}
	if h.opts.UploadDir != "" {
		r.Static("/products", h.opts.UploadDir+"/products")
	}

	api := r.Group("/api", h.authenticate())

	api.POST("/auth/register", h.handleRegister)
	api.POST("/auth/login", h.handleLogin)
	api.POST("/register", h.handleRegister)
	api.POST("/login", h.handleLogin)

	api.GET("/products", h.handleListProducts)
	api.GET("/products/:id", h.handleGetProduct)
	api.GET("/categories", h.handleCategories)

	staff := api.Group("", requireRole(user.RoleSeller, user.RoleAdmin))
	staff.GET("/products/deactivated", h.handleListDeactivated)
	staff.POST("/products", h.handleCreateProduct)
	staff.PUT("/products/:id", h.handleEditProduct)
	staff.POST("/products/:id/deactivate", h.handleDeactivate)
	staff.POST("/products/:id/reactivate", h.handleReactivate)
	staff.POST("/products/:id/stock/add", h.handleStock(stockAdd))
	staff.POST("/products/:id/stock/remove", h.handleStock(stockRemove))
	staff.PUT("/products/:id/stock", h.handleStock(stockSet))
	staff.PATCH("/orders", h.handleUpdateShipping)
	staff.GET("/dashboard", h.handleDashboard)
	staff.GET("/logs", h.handleActivity)

	member := api.Group("", requireRole())
	member.POST("/orders", h.handlePlaceOrder)
	member.GET("/orders", h.handleListOrders)
	member.GET("/orders/groups", h.handleListGroups)
	member.GET("/reviews", h.handleListReviews)
	member.POST("/reviews", h.handleCreateReview)

	return r
}

func (h *Handler) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
