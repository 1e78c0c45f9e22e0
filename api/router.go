package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/easyrent/vehiclerental/internal/logger"
	"github.com/easyrent/vehiclerental/internal/validation"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	httpSwagger "github.com/swaggo/http-swagger"
)

type RouterConfig struct {
	AllowedOrigin string
	UploadDir     string
	SwaggerDir    string
	Cookie        SessionCookie
}

// Services is everything the HTTP surface calls into.
type Services struct {
	Users    *UserHandler
	Vehicles *VehicleHandler
	Places   *LocationHandler
	Bookings *BookingHandler
	Attempts *AttemptHandler
	Chat     *ChatHandler
	Sessions SessionResolver
}

// NewRouter builds the gin engine with CORS, request logging, the custom
// binding tags and every /api route.
func NewRouter(cfg RouterConfig, svc Services, log logger.Logger) (*gin.Engine, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := validation.Register(v); err != nil {
			return nil, fmt.Errorf("register validators: %w", err)
		}
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if cfg.UploadDir != "" {
		r.Static("/uploads", cfg.UploadDir)
	}
	if cfg.SwaggerDir != "" {
		r.Static("/swagger", cfg.SwaggerDir)
		r.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json"))))
	}
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	auth := RequireSession(svc.Sessions, cfg.Cookie.Name)
	group := r.Group("/api")
	svc.Users.Register(group, auth)
	svc.Vehicles.Register(group, auth)
	svc.Places.Register(group)
	svc.Bookings.Register(group, auth)
	svc.Attempts.Register(group, auth)
	svc.Chat.Register(group)

	return r, nil
}
