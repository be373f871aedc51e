package handler

import (
	"net/http"

	"study-set-server/internal/config"
	"study-set-server/internal/domain"
	"study-set-server/internal/service"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

const (
	serviceName = "study-set-server"
	apiPrefix   = "/api/v1"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Conversion   *ConversionHandler
	Title        *TitleHandler
	Quiz         *QuizHandler
	CleanupStats func() service.CleanupStats
}

// NewHandlers builds the handlers from the dependency container.
func NewHandlers(container *config.Container) Handlers {
	maxFileSize := container.Config.GetMaxFileSize()
	return Handlers{
		Conversion:   NewConversionHandler(container.ConversionService, maxFileSize, container.Logger),
		Title:        NewTitleHandler(container.TitleService, maxFileSize, container.Logger),
		Quiz:         NewQuizHandler(container.QuizService, container.Logger),
		CleanupStats: container.CleanupQueue.Stats,
	}
}

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(container *config.Container) http.Handler {
	return newRouter(NewHandlers(container), container.Config.GetAllowedOrigins(), container.Logger)
}

func newRouter(h Handlers, allowedOrigins []string, logger domain.Logger) http.Handler {
	router := mux.NewRouter()
	router.Use(RecoveryMiddleware(logger), RequestIDMiddleware, LoggingMiddleware(logger))

	router.HandleFunc("/health", healthHandler(h.CleanupStats)).Methods(http.MethodGet)

	// API routes live on the root router so a wrong method answers 405 instead of 404
	router.HandleFunc(apiPrefix+"/convert", h.Conversion.Convert).Methods(http.MethodPost)
	router.HandleFunc(apiPrefix+"/generate-name", h.Title.GenerateName).Methods(http.MethodPost)
	router.HandleFunc(apiPrefix+"/quiz", h.Quiz.GenerateQuiz).Methods(http.MethodPost)
	router.HandleFunc(apiPrefix+"/study-sets/{id}/quiz", h.Quiz.GenerateStudySetQuiz).Methods(http.MethodPost)

	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			RequestIDHeader,
		},
		ExposedHeaders: []string{
			"Content-Disposition",
			RequestIDHeader,
		},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}

type healthResponse struct {
	Status  string                `json:"status"`
	Service string                `json:"service"`
	Cleanup *service.CleanupStats `json:"cleanup,omitempty"`
}

func healthHandler(stats func() service.CleanupStats) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok", Service: serviceName}
		if stats != nil {
			s := stats()
			resp.Cleanup = &s
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
