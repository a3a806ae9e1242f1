package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"campusx/internal/infra/config"
	"campusx/internal/infra/obs"
)

type AuthHTTP interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Me(c *gin.Context)
	ChangePassword(c *gin.Context)
	ForgotPassword(c *gin.Context)
	ResetPassword(c *gin.Context)
}

type UserHTTP interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	GetByUsername(c *gin.Context)
	UpdateMe(c *gin.Context)
	DeactivateMe(c *gin.Context)
}

type OfferingHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	List(c *gin.Context)
	ListMine(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type BookingHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	ChangeStatus(c *gin.Context)
	Cancel(c *gin.Context)
	Delete(c *gin.Context)
	ListMine(c *gin.Context)
	ListRequests(c *gin.Context)
}

type ReviewHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	ListForProfile(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type UploadHTTP interface {
	UploadImage(c *gin.Context)
}

type Handlers struct {
	Auth           AuthHTTP
	User           UserHTTP
	Offering       OfferingHTTP
	Booking        BookingHTTP
	Review         ReviewHTTP
	Upload         UploadHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.GET("/auth/me", h.Auth.Me)
		api.POST("/auth/change-password", h.Auth.ChangePassword)
		api.POST("/auth/forgot-password", h.Auth.ForgotPassword)
		api.POST("/auth/reset-password", h.Auth.ResetPassword)
	}
	if h.User != nil {
		api.GET("/users", h.User.List)
		api.GET("/users/:id", h.User.Get)
		api.GET("/users/username/:username", h.User.GetByUsername)
		api.PUT("/users/me", h.User.UpdateMe)
		api.DELETE("/users/me", h.User.DeactivateMe)
	}
	if h.Offering != nil {
		api.GET("/offerings", h.Offering.List)
		api.POST("/offerings", h.Offering.Create)
		api.GET("/offerings/:id", h.Offering.Get)
		api.PUT("/offerings/:id", h.Offering.Update)
		api.DELETE("/offerings/:id", h.Offering.Delete)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.GET("/bookings/:id", h.Booking.Get)
		api.PATCH("/bookings/:id/status", h.Booking.ChangeStatus)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
		api.DELETE("/bookings/:id", h.Booking.Delete)
	}
	if h.Review != nil {
		api.POST("/reviews", h.Review.Create)
		api.GET("/reviews/:id", h.Review.Get)
		api.PUT("/reviews/:id", h.Review.Update)
		api.DELETE("/reviews/:id", h.Review.Delete)
		api.GET("/users/:id/reviews", h.Review.ListForProfile)
	}
	if h.Upload != nil {
		api.POST("/uploads", h.Upload.UploadImage)
	}

	meGroup := api.Group("/me")
	if h.Offering != nil {
		meGroup.GET("/offerings", h.Offering.ListMine)
	}
	if h.Booking != nil {
		meGroup.GET("/bookings", h.Booking.ListMine)
		meGroup.GET("/requests", h.Booking.ListRequests)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug", "dev", "local":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
