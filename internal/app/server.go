// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"carecycle-service/internal/config"
	"carecycle-service/internal/db"
	authHandler "carecycle-service/internal/handlers/auth"
	blogHandler "carecycle-service/internal/handlers/blog"
	bookingHandler "carecycle-service/internal/handlers/booking"
	cycleHandler "carecycle-service/internal/handlers/cycle"
	pagesHandler "carecycle-service/internal/handlers/pages"
	paymentHandler "carecycle-service/internal/handlers/payment"
	scheduleHandler "carecycle-service/internal/handlers/schedule"
	subscriptionHandler "carecycle-service/internal/handlers/subscription"
	wsHandler "carecycle-service/internal/handlers/websocket"
	"carecycle-service/internal/middleware"
	"carecycle-service/internal/pkg/jwt"
	"carecycle-service/internal/pkg/session"
	"carecycle-service/internal/repository/postgres"
	authUsecase "carecycle-service/internal/service/auth"
	blogUsecase "carecycle-service/internal/service/blog"
	bookingUsecase "carecycle-service/internal/service/booking"
	chatUsecase "carecycle-service/internal/service/chat"
	cycleUsecase "carecycle-service/internal/service/cycle"
	"carecycle-service/internal/service/email"
	paymentUsecase "carecycle-service/internal/service/payment"
	scheduleUsecase "carecycle-service/internal/service/schedule"
	subscriptionUsecase "carecycle-service/internal/service/subscription"
	"carecycle-service/internal/websocket"
	wsHandlers "carecycle-service/internal/websocket/handler"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	http   *http.Server
	cancel context.CancelFunc
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	// ----- Logger -----
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       0,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	// ----- JWT Manager -----
	jwtManager, err := jwt.Build(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to build JWT manager: %w", err)
	}

	// ----- Session Manager -----
	sessionManager := session.NewManager(session.NewRedisStore(redisClient), logger)

	// ----- Email -----
	emailSender := email.NewEmailSender(
		s.cfg.SMTPHost,
		s.cfg.SMTPPort,
		s.cfg.SMTPUser,
		s.cfg.SMTPPass,
		s.cfg.SMTPFromName,
		s.cfg.SMTPSecure,
	)

	// ----- Repositories -----
	dbWrapper := postgres.NewDB(pool)
	authRepo := postgres.NewAuthRepository(pool)
	blogRepo := postgres.NewBlogRepository(pool)
	scheduleRepo := postgres.NewScheduleRepository(pool)
	bookingRepo := postgres.NewBookingRepository(pool)
	subscriptionRepo := postgres.NewSubscriptionRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	cycleRepo := postgres.NewCycleRepository(pool)
	chatRepo := postgres.NewChatRepository(pool)

	// ----- WebSocket Hub -----
	hub := websocket.NewHub(jwtManager.Verifier, sessionManager, logger)

	// ----- Session Watcher -----
	// Session lifecycle events flow out over the hub so open clients can
	// warn about or react to expiry without polling.
	watcher := session.NewWatcher(sessionManager, func(ev session.Event) {
		switch ev.Type {
		case session.EventExpiringSoon:
			hub.NotifySessionExpiring(ev.User.ID, ev.Remaining.Milliseconds())
		case session.EventExpired:
			hub.NotifySessionExpired(ev.User.ID)
		}
	}, logger)

	go hub.Run(ctx)
	go watcher.Run(ctx)

	// ----- Services -----
	authService := authUsecase.NewAuthService(authRepo, jwtManager, sessionManager, emailSender, logger)
	blogService := blogUsecase.NewBlogService(blogRepo, logger)
	scheduleService := scheduleUsecase.NewScheduleService(scheduleRepo, logger)
	bookingService := bookingUsecase.NewBookingService(dbWrapper, bookingRepo, scheduleRepo, authRepo, emailSender, logger)
	subscriptionService := subscriptionUsecase.NewSubscriptionService(subscriptionRepo, logger)
	paymentService := paymentUsecase.NewPaymentService(paymentRepo, logger)
	cycleService := cycleUsecase.NewCycleService(cycleRepo, logger)
	chatService := chatUsecase.NewChatService(chatRepo, logger)

	hub.RegisterHandler(wsHandlers.NewChatHandler(hub, chatService, logger))

	// Periodic subscription expiry sweep
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				subscriptionService.ExpireDue(ctx)
			}
		}
	}()

	// ----- Handlers -----
	handlers := &Handlers{
		AuthHandler:         authHandler.NewAuthHandler(authService, logger),
		BlogHandler:         blogHandler.NewBlogHandler(blogService, logger),
		ScheduleHandler:     scheduleHandler.NewScheduleHandler(scheduleService, logger),
		BookingHandler:      bookingHandler.NewBookingHandler(bookingService, logger),
		SubscriptionHandler: subscriptionHandler.NewSubscriptionHandler(subscriptionService, logger),
		PaymentHandler:      paymentHandler.NewPaymentHandler(paymentService, logger),
		CycleHandler:        cycleHandler.NewCycleHandler(cycleService, logger),
		WSHandler:           wsHandler.NewWebSocketHandler(hub, logger),
		PageHandler:         pagesHandler.NewPageHandler(sessionManager),
		AuthMiddleware:      middleware.NewAuthMiddleware(jwtManager.Verifier, sessionManager),
		Guard:               middleware.NewGuard(sessionManager),
	}

	// ----- Middlewares -----
	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	SetupRouter(s.engine, logger, handlers)

	// ----- Start HTTP -----
	log.Printf("server running on %s", s.cfg.HTTPAddr)
	s.http = &http.Server{Addr: s.cfg.HTTPAddr, Handler: s.engine}
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops background loops and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}
