package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/diagnosia-api/internal/metrics"
	"github.com/harentsoaR/diagnosia-api/internal/middleware"
	"github.com/harentsoaR/diagnosia-api/internal/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type RouterOptions struct {
	Logger             zerolog.Logger
	AllowedOrigins     []string
	RateLimitPerMinute int
	// TrustedProxies are the only peers whose forwarding headers decide the
	// client IP the rate limiter keys on. Nil trusts none.
	TrustedProxies []string
}

// NewRouter builds the engine with the ambient middleware and every route.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		opts.Logger.Error().Err(err).Strs("proxies", opts.TrustedProxies).Msg("invalid trusted proxies, trusting none")
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(
		gin.Recovery(),
		middleware.RequestID(opts.Logger),
		middleware.RequestLogging(),
		middleware.Metrics(),
	)

	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	h.Register(r, middleware.NewRateLimiter(opts.RateLimitPerMinute))
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	return r
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter, limiter *middleware.RateLimiter) {
	session := middleware.RequireSession(h.Sessions)
	admin := middleware.RequireAdmin(h.Store.Users)
	limited := limiter.Handler()

	r.GET("/", h.Root)
	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	// --- Reference data ---
	r.GET("/divisions", h.Divisions)
	r.GET("/districts", h.Districts)
	r.GET("/upazilas", h.Upazilas)

	// --- Users ---
	r.POST("/users", h.CreateUser)
	r.GET("/users", session, admin, h.ListUsers)
	r.GET("/user", h.GetUser)
	r.PUT("/users", session, h.UpdateProfile)
	r.PATCH("/user-role/:id", session, admin, h.PromoteUser)
	r.PATCH("/user-status/:id", session, admin, h.ToggleUserStatus)
	r.GET("/users/admin/:email", session, admin, h.CheckAdmin)

	// --- Tests ---
	r.POST("/tests", session, admin, h.CreateTest)
	r.PUT("/tests", session, admin, h.UpdateTest)
	r.DELETE("/test/:id", session, admin, h.DeleteTest)
	r.GET("/tests", h.ListTests)
	r.GET("/featured", h.FeaturedTests)
	r.GET("/details/:id", h.GetTest)

	// --- Appointments & reports ---
	r.POST("/appointments", session, h.CreateAppointment)
	r.GET("/appointments", session, h.ListAppointments)
	r.DELETE("/appointments/:id", session, h.DeleteAppointment)
	r.POST("/reports", session, admin, h.FileReport)
	r.GET("/reports", h.ListReports)

	// --- Banners ---
	r.POST("/banners", session, admin, h.CreateBanner)
	r.GET("/banners", h.ListBanners)
	r.GET("/active-banner", h.ActiveBanner)
	r.PATCH("/banner/:id", session, admin, h.ActivateBanner)
	r.DELETE("/banner/:id", session, admin, h.DeleteBanner)

	// --- Content ---
	r.GET("/promotions", h.Content(models.ContentPromotions))
	r.GET("/testimonials", h.Content(models.ContentTestimonials))
	r.GET("/tips", h.Content(models.ContentTips))
	r.GET("/blogs", h.Content(models.ContentBlogs))
	r.GET("/about", h.Content(models.ContentAbout))
	r.GET("/footer", h.Content(models.ContentFooter))

	// --- Payments, uploads, session ---
	r.POST("/create-payment-intent", limited, session, h.CreatePaymentIntent)
	r.POST("/upload", limited, h.UploadFile)
	r.POST("/jwt", limited, h.IssueSession)
	r.POST("/logout", h.Logout)
}
