package api

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/stockpilot-io/stockpilot/internal/auth"
	"github.com/stockpilot-io/stockpilot/internal/config"
	"github.com/stockpilot-io/stockpilot/internal/store"
)

type Api struct {
	Config *config.Config
	Store  *store.Store
	Auth   *auth.Service
	Router *chi.Mux
}

// New wires the API around an already-opened store. It never starts
// listening; call Serve for that, or use Router directly in tests.
func New(cfg *config.Config, st *store.Store) (*Api, error) {
	if cfg.APIPort == 0 {
		return nil, fmt.Errorf("must have at least a port to start API")
	}

	a := &Api{
		Config: cfg,
		Store:  st,
		Auth:   auth.New(st, cfg),
		Router: chi.NewRouter(),
	}
	a.setupRoutes()
	return a, nil
}

func (a *Api) setupRoutes() {
	r := a.Router

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.Config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	r.Get("/heartbeat", a.Heartbeat)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", a.RegisterHandler)
		r.Post("/login", a.LoginHandler)
		// Logout succeeds whether or not a token is presented, so it
		// stays outside the auth guard.
		r.Post("/logout", a.LogoutHandler)

		r.Group(func(r chi.Router) {
			r.Use(a.requireAuth)

			r.Route("/products", func(r chi.Router) {
				r.Get("/", a.ListProductsHandler)
				r.Post("/", a.CreateProductHandler)
				r.Get("/{id}", a.GetProductHandler)
				r.Put("/{id}", a.UpdateProductHandler)
				r.Delete("/{id}", a.DeleteProductHandler)
			})

			r.Get("/barcode/{code}", a.BarcodeHandler)
			r.Get("/qrcode/{code}", a.QRCodeHandler)
		})
	})
}

// Serve starts the session sweeper and blocks serving HTTP.
func (a *Api) Serve() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			n, err := a.Auth.CleanupExpiredSessions()
			if err != nil {
				log.Printf("Error cleaning up expired sessions: %v", err)
			} else if n > 0 {
				log.Printf("Cleaned up %d expired sessions", n)
			}
			<-ticker.C
		}
	}()

	addr := fmt.Sprintf("0.0.0.0:%d", a.Config.APIPort)
	log.Printf("Starting API server on %s", addr)
	log.Fatal(http.ListenAndServe(addr, a.Router))
}

func (a *Api) Heartbeat(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
