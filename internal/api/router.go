package api

import (
	"github.com/buslane/buslane/internal/api/handler"
	"github.com/buslane/buslane/internal/api/middleware"
	"github.com/buslane/buslane/internal/logger"
	"github.com/buslane/buslane/internal/service"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(imports *service.ImportService, log *logger.Logger, mode string, cors middleware.CORSConfig) *gin.Engine {
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(cors))

	healthHandler := handler.NewHealthHandler()
	schemaHandler := handler.NewSchemaHandler(imports.Registry())
	importHandler := handler.NewImportHandler(imports)
	auditHandler := handler.NewAuditHandler(imports)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		// Schema catalog and upload templates
		v1.GET("/schemas", schemaHandler.ListSchemas)
		v1.GET("/schemas/:id", schemaHandler.GetSchema)
		v1.GET("/schemas/:id/template", schemaHandler.GetTemplate)

		// Import sessions
		v1.POST("/imports", importHandler.CreateSession)
		v1.GET("/imports/:id", importHandler.GetSession)
		v1.PUT("/imports/:id/mapping", importHandler.SetMapping)
		v1.POST("/imports/:id/load", importHandler.Load)
		v1.GET("/imports/:id/progress", importHandler.Progress)
		v1.DELETE("/imports/:id", importHandler.DeleteSession)

		// Import history
		v1.GET("/audits", auditHandler.ListAudits)
	}

	return r
}
