package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RouterConfig holds the router settings that do not come from the API deps.
type RouterConfig struct {
	CORSOrigins []string
	// UploadsDir is served under /uploads when set.
	UploadsDir string
}

// NewRouter mounts the REST API, the websocket endpoint and operational routes.
func NewRouter(api *API, ws *WSHandler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	if api.metrics != nil {
		r.Use(api.metrics.Middleware)
	}
	r.Use(requestLogger(api.log))

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if api.metrics != nil {
		r.Method(http.MethodGet, "/metrics", api.metrics.Handler())
	}
	if ws != nil {
		r.Get("/ws", ws.ServeWS)
	}
	if cfg.UploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", api.HandleLogin)

		r.Group(func(pr chi.Router) {
			pr.Use(api.auth.Middleware)
			pr.Get("/quizzes", api.HandleListQuizzes)
			pr.Post("/quizzes", api.HandleCreateQuiz)
			pr.Get("/quizzes/{id}", api.HandleGetQuiz)
			pr.Put("/quizzes/{id}", api.HandleUpdateQuiz)
			pr.Get("/quizzes/{id}/embed", api.HandleEmbed)
			pr.Post("/images", api.HandleUploadImage)
		})

		r.Get("/public/quizzes/{id}", api.HandlePreview)
		r.Route("/play", func(r chi.Router) {
			r.Post("/{quizID}/sessions", api.HandleOpenSession)
			r.Route("/sessions/{sid}", func(r chi.Router) {
				r.Get("/", api.HandleSessionState)
				r.Delete("/", api.HandleCloseSession)
				r.Post("/start", api.HandleStart)
				r.Post("/answer", api.HandleAnswer)
				r.Post("/back", api.HandleBack)
				r.Post("/reset", api.HandleReset)
			})
		})
	})
	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
