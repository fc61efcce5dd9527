package server

import (
	"context"
	"net/http"
	"time"

	"github.com/Puru-codes/parking-lot/internal/auth"
	"github.com/Puru-codes/parking-lot/internal/billing"
	"github.com/Puru-codes/parking-lot/internal/config"
	"github.com/Puru-codes/parking-lot/internal/email"
	"github.com/Puru-codes/parking-lot/internal/lot"
	"github.com/Puru-codes/parking-lot/internal/reservation"
	"github.com/Puru-codes/parking-lot/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

const visitorTTL = 3 * time.Minute

type Server struct {
	router  *gin.Engine
	http    *http.Server
	limiter *RateLimiter
	users   user.Service
}

// New wires repositories, services and handlers for every route.
func New(db *sqlx.DB, cfg *config.Config, emailService *email.Service) *Server {
	policy := billing.Policy{Digits: cfg.BillingRoundDigits}

	userService := user.NewService(user.NewRepository(db), cfg.JWTSecret)
	lotService := lot.NewService(lot.NewRepository(db), cfg.HistoryPolicy, policy)
	reservationService := reservation.NewService(reservation.NewRepository(db), policy, emailService)

	limiter := NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, visitorTTL)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestIDMiddleware(),
		RequestLoggingMiddleware(),
		MetricsMiddleware(),
		corsMiddleware(),
		limiter.Middleware(),
	)

	routes{
		users:        user.NewHandler(userService),
		lots:         lot.NewHandler(lotService),
		reservations: reservation.NewHandler(reservationService),
		mailer:       emailService,
		jwtSecret:    cfg.JWTSecret,
	}.register(router)

	router.GET("/health", Health(db, emailService))
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router:  router,
		limiter: limiter,
		users:   userService,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

type routes struct {
	users        *user.Handler
	lots         *lot.Handler
	reservations *reservation.Handler
	mailer       emailSender
	jwtSecret    string
}

func (r routes) register(router *gin.Engine) {
	public := router.Group("/auth")
	{
		public.POST("/register", r.users.Register)
		public.POST("/login", r.users.Login)
		public.POST("/refresh", r.users.RefreshToken)
	}

	authMiddleware := auth.AuthMiddleware(r.jwtSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", r.users.GetMe)
		protected.PUT("/me", r.users.UpdateMe)
		protected.GET("/lots", r.lots.ListLots)
		protected.GET("/lots/:lotID/spots", r.lots.ListSpots)
		protected.POST("/lots/:lotID/reserve", r.reservations.BookInLot)
		protected.POST("/spots/:spotID/book", r.reservations.BookSpot)
		protected.POST("/reservations/:reservationID/release", r.reservations.ReleaseSpot)
		protected.GET("/reservations", r.reservations.ListMine)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/lots", r.lots.CreateLot)
		admin.GET("/lots", r.lots.ListLots)
		admin.PUT("/lots/:lotID", r.lots.UpdateLot)
		admin.DELETE("/lots/:lotID", r.lots.DeleteLot)
		admin.GET("/lots/:lotID/spots", r.lots.ListSpots)
		admin.GET("/lots/:lotID/reservations", r.reservations.ListByLot)
		admin.GET("/spots/:spotID", r.lots.GetSpot)
		admin.DELETE("/spots/:spotID", r.lots.DeleteSpot)
		admin.GET("/analytics/reservations", r.reservations.GetAnalytics)
		admin.GET("/users", r.users.ListUsers)
		admin.GET("/test-email", TestEmail(r.mailer))
	}
}

// EnsureAdmin seeds the configured admin account when no admin exists yet.
func (s *Server) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	return s.users.EnsureAdmin(ctx, username, password)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks until the listener fails or Shutdown is called, in which case
// it returns http.ErrServerClosed.
func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.http.Shutdown(ctx)
}
