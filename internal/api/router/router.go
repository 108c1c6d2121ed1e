package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"obra-admin/backend/config"
	"obra-admin/backend/internal/api/handler"
	"obra-admin/backend/internal/api/middleware"
	"obra-admin/backend/pkg/jwt"
	"obra-admin/backend/pkg/metrics"
)

// multipartOverhead 上传请求中表单边界与字段的额外字节
const multipartOverhead = 1 << 20

// Setup 初始化并返回 Gin 路由引擎
// limiter、m、reg 均可为 nil
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	jwtMgr *jwt.Manager,
	limiter middleware.RateLimiter,
	m *metrics.Metrics,
	reg *prometheus.Registry,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.SecurityHeaders("/api/"))
	r.Use(middleware.CORS(&cfg.Server.CORS))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if reg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	admin := middleware.RoleAuth(jwt.RoleAdmin)

	// ── API v1（全部需要认证）──
	authorized := r.Group("/api/v1")
	authorized.Use(middleware.JWTAuth(jwtMgr))
	authorized.Use(middleware.RateLimit(limiter, cfg.RateLimit.Limit, cfg.RateLimit.Window, logger))

	// 文件上传使用独立的请求体上限
	authorized.POST("/files",
		middleware.BodyLimit(cfg.Storage.MaxUploadSize+multipartOverhead), admin, h.File.Upload)

	api := authorized.Group("")
	api.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
	{
		// 工资周模块
		weeks := api.Group("/payroll-weeks")
		{
			weeks.GET("", h.Payroll.ListWeeks)
			weeks.GET("/preview", h.Payroll.PreviewWeeks)
			weeks.GET("/years", h.Payroll.ListYears)
			weeks.GET("/current", h.Payroll.CurrentWeek)
			weeks.GET("/calendar.ics", h.Export.ExportCalendar)
			weeks.POST("/generate", admin, h.Payroll.GenerateWeeks)
			weeks.DELETE("", admin, h.Payroll.PurgeYear)

			weeks.GET("/:id", h.Payroll.GetWeek)
			weeks.PUT("/:id", admin, h.Payroll.UpdateWeek)
			weeks.PUT("/:id/close", admin, h.Payroll.CloseWeek)
			weeks.PUT("/:id/reopen", admin, h.Payroll.ReopenWeek)
			weeks.POST("/:id/recalculate", admin, h.Payroll.Recalculate)
			weeks.GET("/:id/export", h.Export.ExportWeek)

			weeks.GET("/:id/payments", h.Payroll.ListPayments)
			weeks.POST("/:id/payments", admin, h.Payroll.CreatePayment)
			weeks.PUT("/:id/payments/:pid", admin, h.Payroll.UpdatePayment)
			weeks.DELETE("/:id/payments/:pid", admin, h.Payroll.DeletePayment)
		}

		// 工程模块
		projects := api.Group("/projects")
		{
			projects.GET("", h.Project.List)
			projects.GET("/:id", h.Project.GetByID)
			projects.POST("", admin, h.Project.Create)
			projects.PUT("/:id", admin, h.Project.Update)
			projects.DELETE("/:id", admin, h.Project.Archive)
			projects.PUT("/:id/contractors", admin, h.Project.SetContractors)
			projects.PUT("/:id/workers", admin, h.Project.SetWorkers)
			projects.POST("/:id/payments", admin, h.Project.AddPayment)
			projects.DELETE("/:id/payments/:pid", admin, h.Project.DeletePayment)
			projects.GET("/:id/summary", h.Project.Summary)
			projects.GET("/:id/concepts", h.Project.ListConcepts)
			projects.POST("/:id/concepts", admin, h.Project.CreateConcept)
		}

		// 预算项模块
		concepts := api.Group("/concepts")
		{
			concepts.PUT("/:id", admin, h.Project.UpdateConcept)
			concepts.DELETE("/:id", admin, h.Project.DeleteConcept)
			concepts.POST("/:id/payments", admin, h.Project.AddConceptPayment)
			concepts.DELETE("/:id/payments/:pid", admin, h.Project.DeleteConceptPayment)
		}

		// 支出模块
		expenses := api.Group("/expenses")
		{
			expenses.GET("", h.Expense.List)
			expenses.GET("/:id", h.Expense.GetByID)
			expenses.POST("", admin, h.Expense.Create)
			expenses.PUT("/:id", admin, h.Expense.Update)
			expenses.DELETE("/:id", admin, h.Expense.Delete)
		}

		// 潜在客户模块
		prospects := api.Group("/prospects")
		{
			prospects.GET("", h.Prospect.List)
			prospects.GET("/:id", h.Prospect.GetByID)
			prospects.POST("", admin, h.Prospect.Create)
			prospects.PUT("/:id", admin, h.Prospect.Update)
			prospects.DELETE("/:id", admin, h.Prospect.Archive)
			prospects.POST("/:id/follow-ups", admin, h.Prospect.AddFollowUp)
			prospects.POST("/:id/convert", admin, h.Prospect.Convert)
		}

		// 历史归档（只读）
		history := api.Group("/historial")
		{
			history.GET("/projects", h.History.ListProjects)
			history.GET("/projects/:id", h.History.GetProject)
			history.GET("/prospects", h.History.ListProspects)
			history.GET("/prospects/:id", h.History.GetProspect)
		}

		// 目录模块：专业、承包商、工人
		specialties := api.Group("/specialties")
		{
			specialties.GET("", h.Catalog.ListSpecialties)
			specialties.GET("/:id", h.Catalog.GetSpecialty)
			specialties.POST("", admin, h.Catalog.CreateSpecialty)
			specialties.PUT("/:id", admin, h.Catalog.UpdateSpecialty)
			specialties.DELETE("/:id", admin, h.Catalog.DeleteSpecialty)
		}
		contractors := api.Group("/contractors")
		{
			contractors.GET("", h.Catalog.ListContractors)
			contractors.GET("/:id", h.Catalog.GetContractor)
			contractors.POST("", admin, h.Catalog.CreateContractor)
			contractors.PUT("/:id", admin, h.Catalog.UpdateContractor)
			contractors.DELETE("/:id", admin, h.Catalog.DeleteContractor)
		}
		workers := api.Group("/workers")
		{
			workers.GET("", h.Catalog.ListWorkers)
			workers.GET("/:id", h.Catalog.GetWorker)
			workers.POST("", admin, h.Catalog.CreateWorker)
			workers.PUT("/:id", admin, h.Catalog.UpdateWorker)
			workers.DELETE("/:id", admin, h.Catalog.DeleteWorker)
		}

		// 文件管理模块
		folders := api.Group("/folders")
		{
			folders.GET("", h.File.ListRoot)
			folders.GET("/:id", h.File.GetFolder)
			folders.POST("", admin, h.File.CreateFolder)
			folders.PUT("/:id", admin, h.File.UpdateFolder)
			folders.DELETE("/:id", admin, h.File.DeleteFolder)
		}
		files := api.Group("/files")
		{
			files.GET("/:id/download", h.File.Download)
			files.PUT("/:id", admin, h.File.UpdateFile)
			files.DELETE("/:id", admin, h.File.DeleteFile)
		}

		// 仪表盘
		api.GET("/dashboard/summary", h.Dashboard.Summary)
	}

	return r
}
