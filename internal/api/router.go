package api

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"recruitassist-backend/internal/config"
	"recruitassist-backend/internal/handlers"
)

// RouterDependencies holds all the dependencies required by the router setup,
// primarily handlers and configuration.
type RouterDependencies struct {
	AuthHandler        *handlers.AuthHandler
	JobHandler         *handlers.JobHandler
	ApplicationHandler *handlers.ApplicationHandler
	AnalysisHandler    *handlers.AnalysisHandler
	WebhookHandler     *handlers.WhatsAppWebhookHandler
	Config             *config.Config
}

// NewRouter creates and configures the main Chi router for the application.
//
// Public surface: health, auth, job reads, application submission, and the
// WhatsApp webhook (Meta cannot carry a JWT; the GET handshake uses the
// configured verify token instead). Job writes and recruiter-facing
// application views require a JWT.
func NewRouter(deps RouterDependencies) *chi.Mux {
	r := chi.NewRouter()

	// --- Base Middleware Stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// --- CORS Configuration ---
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173", "https://*.vercel.app"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Requested-With"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		// --- Public Routes (No JWT Required) ---
		r.Route("/auth", func(r chi.Router) {
			if deps.AuthHandler == nil {
				panic("AuthHandler dependency is nil in router setup")
			}
			r.Post("/signup", deps.AuthHandler.HandleSignup)
			r.Post("/login", deps.AuthHandler.HandleLogin)
		})

		if deps.WebhookHandler != nil {
			r.Route("/webhook/whatsapp", func(r chi.Router) {
				r.Get("/", deps.WebhookHandler.HandleVerify)
				r.Post("/", deps.WebhookHandler.HandleEvent)
			})
		} else {
			log.Println("WARN: WebhookHandler dependency is nil, skipping /api/webhook/whatsapp routes.")
		}

		// The careers page lists jobs and submits applications without
		// logging in.
		if deps.JobHandler != nil {
			r.Get("/jobs", deps.JobHandler.HandleListJobs)
			r.Get("/jobs/{jobID}", deps.JobHandler.HandleGetJob)
		}
		if deps.ApplicationHandler != nil {
			r.Post("/applications/create", deps.ApplicationHandler.HandleCreateApplication)
		}

		// --- Authenticated Routes (JWT Required) ---
		r.Group(func(r chi.Router) {
			r.Use(JwtAuthMiddleware(deps.Config.JWTSecret))

			if deps.JobHandler != nil {
				r.Post("/jobs/create", deps.JobHandler.HandleCreateJob)
				r.Put("/jobs/{jobID}", deps.JobHandler.HandleUpdateJob)
				r.Delete("/jobs/{jobID}", deps.JobHandler.HandleDeleteJob)
			} else {
				log.Println("WARN: JobHandler dependency is nil, skipping protected /api/jobs routes.")
			}

			if deps.ApplicationHandler != nil {
				r.Get("/applications", deps.ApplicationHandler.HandleListApplications)
				r.Get("/applications/{applicationID}", deps.ApplicationHandler.HandleGetApplication)
				r.Patch("/applications/{applicationID}/status", deps.ApplicationHandler.HandleUpdateApplicationStatus)
			} else {
				log.Println("WARN: ApplicationHandler dependency is nil, skipping protected /api/applications routes.")
			}

			if deps.AnalysisHandler != nil {
				r.Post("/applications/{applicationID}/analyze", deps.AnalysisHandler.HandleAnalyzeApplication)
				r.Get("/applications/{applicationID}/analysis", deps.AnalysisHandler.HandleGetAnalysis)
			} else {
				log.Println("WARN: AnalysisHandler dependency is nil, skipping /api/applications analysis routes.")
			}
		})
	})

	return r
}
