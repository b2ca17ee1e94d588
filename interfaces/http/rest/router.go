package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/makkenno/ittasu/application/services"
	"github.com/makkenno/ittasu/infrastructure/config"
	"github.com/makkenno/ittasu/infrastructure/observability"
	"github.com/makkenno/ittasu/interfaces/http/rest/handlers"
	"github.com/makkenno/ittasu/interfaces/http/rest/middleware"
	pkgerrors "github.com/makkenno/ittasu/pkg/errors"
)

// Router creates and configures the HTTP router
type Router struct {
	service *services.WorkspaceService
	metrics *observability.Collector
	cfg     *config.Config
	logger  *zap.Logger
}

// NewRouter creates a new router instance. metrics may be nil when
// metrics are disabled.
func NewRouter(
	service *services.WorkspaceService,
	metrics *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	return &Router{
		service: service,
		metrics: metrics,
		cfg:     cfg,
		logger:  logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	router := chi.NewRouter()
	errorHandler := pkgerrors.NewErrorHandler(rt.logger, rt.cfg.IsDevelopment())

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(errorHandler.Middleware)
	router.Use(middleware.Logger(rt.logger))
	if rt.metrics != nil {
		router.Use(middleware.Metrics(rt.metrics))
	}
	router.Use(chimiddleware.Timeout(time.Duration(rt.cfg.RequestTimeoutSeconds) * time.Second))
	router.Use(middleware.BodyLimit(rt.cfg.MaxBodyBytes))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	if rt.metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	workspaceHandler := handlers.NewWorkspaceHandler(rt.service, errorHandler, rt.logger)
	taskHandler := handlers.NewTaskHandler(rt.service, errorHandler, rt.logger)
	edgeHandler := handlers.NewEdgeHandler(rt.service, errorHandler, rt.logger)
	transferHandler := handlers.NewTransferHandler(rt.service, errorHandler, rt.logger)
	templateHandler := handlers.NewTemplateHandler(rt.service, errorHandler, rt.logger)

	router.Route("/api/v1/workspaces/{workspaceID}", func(r chi.Router) {
		r.Get("/", workspaceHandler.GetWorkspace)
		r.Delete("/", workspaceHandler.DeleteWorkspace)

		// Navigation and selection
		r.Put("/current", workspaceHandler.SetCurrentTask)
		r.Post("/current/parent", workspaceHandler.GoToParent)
		r.Post("/current/next", workspaceHandler.GoToNextTask)
		r.Put("/selection", workspaceHandler.SelectTask)

		// Projections
		r.Get("/next-task", workspaceHandler.NextTask)
		r.Get("/markdown", workspaceHandler.Markdown)
		r.Get("/outline", workspaceHandler.Outline)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.ListTasks)
			r.Post("/", taskHandler.CreateTask)
			r.Delete("/{taskID}", taskHandler.DeleteTask)
			r.Put("/{taskID}/title", taskHandler.UpdateTitle)
			r.Put("/{taskID}/memo", taskHandler.UpdateMemo)
			r.Put("/{taskID}/position", taskHandler.UpdatePosition)
			r.Post("/{taskID}/toggle", taskHandler.ToggleComplete)
			r.Get("/{taskID}/export", transferHandler.ExportSubgraph)
		})

		r.Route("/edges", func(r chi.Router) {
			r.Post("/", edgeHandler.CreateEdge)
			r.Delete("/{edgeID}", edgeHandler.DeleteEdge)
		})

		r.Post("/export", transferHandler.ExportSelected)
		r.Post("/import", transferHandler.Import)

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", templateHandler.ListTemplates)
			r.Post("/", templateHandler.SaveTemplate)
			r.Post("/{templateID}/instantiate", templateHandler.InstantiateTemplate)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}
