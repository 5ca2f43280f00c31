// internal/app/router.go
package app

import (
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
	"carecycle-service/internal/pkg/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	AuthHandler         *authHandler.AuthHandler
	BlogHandler         *blogHandler.BlogHandler
	ScheduleHandler     *scheduleHandler.ScheduleHandler
	BookingHandler      *bookingHandler.BookingHandler
	SubscriptionHandler *subscriptionHandler.SubscriptionHandler
	PaymentHandler      *paymentHandler.PaymentHandler
	CycleHandler        *cycleHandler.CycleHandler
	WSHandler           *wsHandler.WebSocketHandler
	PageHandler         *pagesHandler.PageHandler
	AuthMiddleware      *middleware.AuthMiddleware
	Guard               *middleware.Guard
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== WebSocket ====================
	r.GET("/ws", h.WSHandler.HandleConnection)

	// ==================== Public Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/register", h.AuthHandler.Register)
		authPublic.POST("/login", h.AuthHandler.Login)
		authPublic.POST("/refresh", h.AuthHandler.Refresh)
	}

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.POST("/logout", h.AuthHandler.Logout)
		authProtected.POST("/extend", h.AuthHandler.ExtendSession)
		authProtected.GET("/me", h.AuthHandler.Me)
		authProtected.PUT("/updatedetails", h.AuthHandler.UpdateDetails)
		authProtected.PUT("/change-password", h.AuthHandler.ChangePassword)
	}

	// ==================== Blog ====================
	blog := api.Group("/blog")
	{
		blog.GET("/posts", h.BlogHandler.ListPublished)
		blog.GET("/posts/:slug", h.BlogHandler.GetBySlug)
	}

	// ==================== Schedule ====================
	schedule := api.Group("/schedule")
	{
		schedule.GET("/slots", h.ScheduleHandler.ListOpen)
	}

	// ==================== Bookings ====================
	bookings := api.Group("/bookings")
	bookings.Use(h.AuthMiddleware.Auth())
	{
		bookings.POST("", h.BookingHandler.Create)
		bookings.GET("", h.BookingHandler.ListMine)
		bookings.GET("/:id", h.BookingHandler.Get)
		bookings.DELETE("/:id", h.BookingHandler.Cancel)
	}

	// ==================== Subscriptions ====================
	subs := api.Group("/subscriptions")
	{
		subs.GET("/plans", h.SubscriptionHandler.ListPlans)

		subsAuth := subs.Group("")
		subsAuth.Use(h.AuthMiddleware.Auth())
		{
			subsAuth.POST("", h.SubscriptionHandler.Subscribe)
			subsAuth.GET("/current", h.SubscriptionHandler.Current)
			subsAuth.GET("/history", h.SubscriptionHandler.History)
			subsAuth.DELETE("/current", h.SubscriptionHandler.Cancel)
		}
	}

	// ==================== Payments ====================
	payments := api.Group("/payments")
	payments.Use(h.AuthMiddleware.Auth())
	{
		payments.POST("", h.PaymentHandler.Record)
		payments.GET("", h.PaymentHandler.ListMine)
		payments.GET("/:id", h.PaymentHandler.Get)
	}

	// ==================== Cycle Tracking ====================
	cycles := api.Group("/cycles")
	cycles.Use(h.AuthMiddleware.Auth())
	{
		cycles.POST("", h.CycleHandler.Log)
		cycles.GET("", h.CycleHandler.History)
		cycles.GET("/prediction", h.CycleHandler.Predict)
		cycles.PUT("/:id", h.CycleHandler.Update)
		cycles.DELETE("/:id", h.CycleHandler.Delete)
	}

	// ==================== Back Office API ====================
	adminAPI := api.Group("/admin")
	adminAPI.Use(h.AuthMiddleware.Auth())
	{
		// Account management: admins and managers only
		accounts := adminAPI.Group("/users")
		accounts.Use(h.AuthMiddleware.RequireRole(session.RoleAdmin, session.RoleManager))
		{
			accounts.POST("", h.AuthHandler.CreateStaff)
			accounts.GET("", h.AuthHandler.ListUsers)
			accounts.PUT("/:id/deactivate", h.AuthHandler.DeactivateUser)
			accounts.PUT("/:id/reactivate", h.AuthHandler.ReactivateUser)
		}

		// Content management: any staff role
		staff := adminAPI.Group("")
		staff.Use(h.AuthMiddleware.RequireRole(
			session.RoleAdmin, session.RoleManager, session.RoleConsultant, session.RoleStaff,
		))
		{
			staff.GET("/blog/posts", h.BlogHandler.ListAll)
			staff.POST("/blog/posts", h.BlogHandler.Create)
			staff.PUT("/blog/posts/:id", h.BlogHandler.Update)
			staff.PUT("/blog/posts/:id/publish", h.BlogHandler.Publish)
			staff.PUT("/blog/posts/:id/unpublish", h.BlogHandler.Unpublish)
			staff.DELETE("/blog/posts/:id", h.BlogHandler.Delete)

			staff.POST("/schedule/slots", h.ScheduleHandler.Create)
			staff.GET("/schedule/slots", h.ScheduleHandler.ListMine)
			staff.PUT("/schedule/slots/:id", h.ScheduleHandler.Update)
			staff.DELETE("/schedule/slots/:id", h.ScheduleHandler.Cancel)

			staff.GET("/bookings", h.BookingHandler.ListAll)
			staff.PUT("/bookings/:id/complete", h.BookingHandler.Complete)

			staff.GET("/payments", h.PaymentHandler.ListAll)
			staff.PUT("/payments/:id/status", h.PaymentHandler.UpdateStatus)

			staff.GET("/ws/stats", h.WSHandler.GetStats)
		}

		// Plan management: admins and managers only
		plans := adminAPI.Group("/subscriptions/plans")
		plans.Use(h.AuthMiddleware.RequireRole(session.RoleAdmin, session.RoleManager))
		{
			plans.POST("", h.SubscriptionHandler.CreatePlan)
			plans.PUT("/:id", h.SubscriptionHandler.UpdatePlan)
		}
	}

	// ==================== Browser Pages ====================
	// Public pages: the guards redirect here.
	r.GET(middleware.StandardLoginPath, h.PageHandler.Login)
	r.GET(middleware.PrivilegedLoginPath, h.PageHandler.AdminLogin)
	r.GET(middleware.UnauthorizedPath, h.PageHandler.Unauthorized)

	// Back-office pages, one subtree per staff role.
	adminPages := r.Group("/admin")
	adminPages.Use(h.Guard.Privileged(session.RoleAdmin, session.RoleManager))
	{
		adminPages.GET("/dashboard", h.PageHandler.Dashboard("Admin"))
	}

	managerPages := r.Group("/manager")
	managerPages.Use(h.Guard.Privileged(session.RoleManager, session.RoleAdmin))
	{
		managerPages.GET("/dashboard", h.PageHandler.Dashboard("Manager"))
	}

	consultantPages := r.Group("/consultant")
	consultantPages.Use(h.Guard.Privileged(session.RoleConsultant))
	{
		consultantPages.GET("/dashboard", h.PageHandler.Dashboard("Consultant"))
	}

	staffPages := r.Group("/staff")
	staffPages.Use(h.Guard.Privileged(session.RoleStaff, session.RoleAdmin, session.RoleManager))
	{
		staffPages.GET("/dashboard", h.PageHandler.Dashboard("Staff"))
	}

	// Customer pages.
	userPages := r.Group("/user")
	userPages.Use(h.Guard.Customer())
	{
		userPages.GET("/dashboard", h.PageHandler.Dashboard("Your"))
	}

	portal := r.Group("/portal")
	portal.Use(h.Guard.Customer())
	{
		portal.GET("", h.PageHandler.Portal)
	}
}
