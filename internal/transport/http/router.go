package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"brainscore-quiz-service/internal/app"
	"brainscore-quiz-service/internal/auth"
)

// Deps is everything the router mounts.
type Deps struct {
	Quizzes     *app.QuizService
	Play        *app.PlayService
	Media       *app.MediaService
	Auth        *auth.Service
	CORSOrigins []string
	// MediaDir is served under /media/ when uploads are kept on local disk.
	MediaDir      string
	MaxUploadSize int64
	Log           logrus.FieldLogger
}

func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(log), middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	quizzes := NewQuizHandler(d.Quizzes, log)
	play := NewPlayHandler(d.Play, log)
	ws := NewWSHandler(d.Play, originChecker(origins), log)
	authH := NewAuthHandler(d.Auth, log)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ws/play", ws.ServeWS)

	r.Route("/api", func(api chi.Router) {
		api.Get("/quizzes", quizzes.List)
		api.Get("/quizzes/{slug}", quizzes.Detail)

		api.Route("/play", func(pr chi.Router) {
			pr.Post("/", play.Start)
			pr.Get("/{id}", play.State)
			pr.Delete("/{id}", play.End)
			pr.Post("/{id}/select", play.Select)
			pr.Post("/{id}/advance", play.Advance)
			pr.Post("/{id}/restart", play.Restart)
		})

		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/login", authH.Login)
			ar.Post("/logout", authH.Logout)
			ar.Get("/me", authH.Me)
		})

		api.Route("/admin", func(ad chi.Router) {
			ad.Use(auth.RequireAdmin(d.Auth))
			ad.Get("/quizzes", quizzes.List)
			ad.Post("/quizzes", quizzes.Create)
			ad.Get("/quizzes/{id}", quizzes.AdminGet)
			ad.Put("/quizzes/{id}", quizzes.Update)
			ad.Delete("/quizzes/{id}", quizzes.Delete)
			ad.Patch("/quizzes/{id}/questions", quizzes.EditQuestions)

			if d.Media != nil {
				mediaH := NewMediaHandler(d.Media, d.MaxUploadSize, log)
				ad.Post("/media", mediaH.Upload)
				ad.Get("/media/status", mediaH.Status)
			}
		})
	})

	if d.MediaDir != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(d.MediaDir))))
	}
	return r
}

func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}

func requestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
				"request_id": middleware.GetReqID(r.Context()),
			}).Info("request")
		})
	}
}
