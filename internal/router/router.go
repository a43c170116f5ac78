package router

import (
	"net/http"

	"github.com/agora-shop/api/internal/auth"
	"github.com/agora-shop/api/internal/config"
	"github.com/agora-shop/api/internal/enum"
	"github.com/agora-shop/api/internal/handler"
	mw "github.com/agora-shop/api/internal/middleware"
	"github.com/agora-shop/api/internal/service"
	"github.com/agora-shop/api/internal/store"
	"github.com/agora-shop/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// New creates a Chi router with all application routes wired up.
// Catalog reads and checkout are public; everything that mutates the catalog
// or touches orders after creation sits behind the admin token.
func New(cfg *config.Config, queries *store.Queries, pool *pgxpool.Pool, hub *ws.Hub, verifier auth.CredentialVerifier) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	orderService := service.NewOrderService(pool, func(db store.DBTX) service.OrderStore {
		return store.New(db)
	})

	authHandler := handler.NewAuthHandler(verifier, cfg.JWTSecret)
	productHandler := handler.NewProductHandler(queries)
	orderHandler := handler.NewOrderHandler(orderService, queries, hub)
	uploadHandler := handler.NewUploadHandler(cfg.UploadDir)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		authHandler.RegisterRoutes(r)
		r.Get("/products", productHandler.List)
		r.Post("/orders", orderHandler.Create)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.JWTSecret))
			r.Use(mw.RequireRole(enum.RoleAdmin))

			r.Post("/products", productHandler.Create)
			r.Put("/products/{id}", productHandler.Update)
			r.Delete("/products/{id}", productHandler.Delete)

			r.Post("/upload", uploadHandler.Upload)

			r.Get("/orders", orderHandler.List)
			r.Get("/orders/{orderUid}", orderHandler.Get)
			r.Post("/orders/{orderUid}/complete", orderHandler.Complete)
			r.Post("/orders/{orderUid}/archive", orderHandler.Archive)
		})
	})

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Uploaded images
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	return r
}
