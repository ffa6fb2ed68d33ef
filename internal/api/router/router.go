package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cuongbtq/opsboard/internal/api/auth"
	"github.com/cuongbtq/opsboard/internal/api/domain"
	"github.com/cuongbtq/opsboard/internal/api/handler"
)

// Store is everything the handlers need from persistence
type Store interface {
	handler.JobStore
	handler.CommentStore
	handler.JobStatusStore
	handler.JobTypeStore
	handler.PaymentChannelStore
	handler.DepartmentStore
	handler.UserStore
	handler.AccountStore
	handler.NotificationStore
}

// Dependencies holds all dependencies needed by the router
type Dependencies struct {
	Logger         *slog.Logger
	Store          Store
	Emitter        handler.EventEmitter
	Validator      auth.Validator
	CookieName     string
	AllowedOrigins []string
	ServiceName    string
	// Registry receives the HTTP metrics; nil disables /metrics
	Registry *prometheus.Registry
	// HealthCheck reports backing service health; nil means always healthy
	HealthCheck func(ctx context.Context) error
}

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *Dependencies) *gin.Engine {
	r := gin.New()

	if err := handler.RegisterValidators(); err != nil {
		deps.Logger.Error("Failed to register validators", slog.Any("error", err))
	}

	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware(deps.AllowedOrigins))

	if deps.Registry != nil {
		r.Use(MetricsMiddleware(NewMetrics(deps.Registry)))
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	r.GET("/health", healthHandler(deps))

	jobs := handler.NewJobHandler(deps.Store, deps.Emitter, deps.Logger)
	comments := handler.NewCommentHandler(deps.Store, deps.Emitter, deps.Logger)
	statuses := handler.NewJobStatusHandler(deps.Store, deps.Logger)
	jobTypes := handler.NewJobTypeHandler(deps.Store, deps.Logger)
	channels := handler.NewPaymentChannelHandler(deps.Store, deps.Logger)
	departments := handler.NewDepartmentHandler(deps.Store, deps.Logger)
	users := handler.NewUserHandler(deps.Store, deps.Logger)
	accounts := handler.NewAccountHandler(deps.Store, deps.Logger)
	notifications := handler.NewNotificationHandler(deps.Store, deps.Logger)

	privileged := auth.RequireRole(domain.RoleAdmin, domain.RoleManager)

	v1 := r.Group("/v1")
	v1.Use(auth.Middleware(deps.Validator, deps.CookieName, deps.Logger))
	{
		v1.GET("/auth/validate-token", handler.ValidateToken)

		j := v1.Group("/jobs")
		{
			j.GET("", jobs.ListJobs)
			j.POST("", jobs.CreateJob)
			j.GET("/:id", jobs.GetJob)
			j.PATCH("/:id", jobs.UpdateJob)
			j.DELETE("/:id", jobs.DeleteJob)
			j.POST("/:id/advance", jobs.AdvanceJob)
			j.POST("/:id/revert", jobs.RevertJob)
			j.PATCH("/:id/status", jobs.TransitionJob)
			j.GET("/:id/comments", comments.ListComments)
			j.POST("/:id/comments", comments.CreateComment)
		}

		v1.PATCH("/comments/:id", comments.UpdateComment)
		v1.DELETE("/comments/:id", comments.DeleteComment)

		s := v1.Group("/job-statuses")
		{
			s.GET("", statuses.ListJobStatuses)
			s.POST("", privileged, statuses.CreateJobStatus)
			s.PUT("/order", privileged, statuses.ReorderJobStatuses)
			s.GET("/:id", statuses.GetJobStatus)
			s.PATCH("/:id", privileged, statuses.UpdateJobStatus)
			s.DELETE("/:id", privileged, statuses.DeleteJobStatus)
		}

		t := v1.Group("/job-types")
		{
			t.GET("", jobTypes.ListJobTypes)
			t.POST("", privileged, jobTypes.CreateJobType)
			t.GET("/:id", jobTypes.GetJobType)
			t.PATCH("/:id", privileged, jobTypes.UpdateJobType)
			t.DELETE("/:id", privileged, jobTypes.DeleteJobType)
		}

		pc := v1.Group("/payment-channels")
		{
			pc.GET("", channels.ListPaymentChannels)
			pc.POST("", privileged, channels.CreatePaymentChannel)
			pc.GET("/:id", channels.GetPaymentChannel)
			pc.PATCH("/:id", privileged, channels.UpdatePaymentChannel)
			pc.DELETE("/:id", privileged, channels.DeletePaymentChannel)
		}

		d := v1.Group("/departments")
		{
			d.GET("", departments.ListDepartments)
			d.POST("", privileged, departments.CreateDepartment)
			d.GET("/:id", departments.GetDepartment)
			d.GET("/:id/users", departments.ListDepartmentUsers)
			d.PATCH("/:id", privileged, departments.UpdateDepartment)
			d.DELETE("/:id", privileged, departments.DeleteDepartment)
		}

		u := v1.Group("/users")
		{
			u.GET("/me/settings", users.GetSettings)
			u.PATCH("/me/settings", users.UpdateSettings)
			u.GET("", users.ListUsers)
			u.POST("", privileged, users.CreateUser)
			u.GET("/:id", users.GetUser)
			u.PATCH("/:id", privileged, users.UpdateUser)
			u.DELETE("/:id", privileged, users.DeleteUser)
		}

		a := v1.Group("/accounts")
		{
			a.GET("", accounts.ListAccounts)
			a.POST("", accounts.CreateAccount)
			a.DELETE("/:id", accounts.DeleteAccount)
		}

		n := v1.Group("/notifications")
		{
			n.GET("", notifications.ListNotifications)
			n.POST("/read-all", notifications.MarkAllRead)
			n.PATCH("/:id/read", notifications.MarkRead)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "route not found"})
	})

	return r
}

func healthHandler(deps *Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.HealthCheck != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := deps.HealthCheck(ctx); err != nil {
				deps.Logger.Warn("Health check failed", slog.Any("error", err))
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unhealthy",
					"service": deps.ServiceName,
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": deps.ServiceName,
		})
	}
}
