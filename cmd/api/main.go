// cmd/api/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"bookstore/internal/auth"
	"bookstore/internal/cart"
	"bookstore/internal/catalog"
	"bookstore/internal/config"
	"bookstore/internal/db"
	"bookstore/internal/notify"
	"bookstore/internal/order"
	"bookstore/internal/telemetry"
)

const tokenTTL = 24 * time.Hour

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("configuration error")
	}

	log := newLogger(cfg)
	ctx := context.Background()

	shutdownTracing, err := telemetry.Init(ctx, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}
	defer shutdownTracing(ctx)

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, tokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid signing key")
	}

	notifier := newNotifier(ctx, cfg, log)

	authService := auth.NewService(database, tokens, log)
	catalogService := catalog.NewService(database)
	cartService := cart.NewService(database)
	orderService := order.NewService(database, notifier, log)

	authHandler := auth.NewHandler(authService)
	catalogHandler := catalog.NewHandler(catalogService)
	cartHandler := cart.NewHandler(cartService)
	orderHandler := order.NewHandler(orderService)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Get("/books", catalogHandler.ListBooks)
		r.Get("/books/category", catalogHandler.ListByCategory)
		r.Get("/books/search", catalogHandler.Search)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(authService))

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(auth.RoleAdmin))
				r.Post("/books", catalogHandler.AddBook)
				r.Delete("/books/{id}", catalogHandler.DeleteBook)
				r.Put("/books/{id}/stock", catalogHandler.UpdateStock)
			})

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(auth.RoleUser))
				r.Get("/cart", cartHandler.GetCart)
				r.Post("/cart/add", cartHandler.AddItem)
				r.Put("/cart/update", cartHandler.UpdateItem)
				r.Delete("/cart/remove", cartHandler.RemoveItem)
				r.Delete("/cart/clear", cartHandler.Clear)

				r.Post("/orders", orderHandler.Create)
				r.Get("/orders", orderHandler.ListOrders)
			})
		})
	})

	log.Info().Str("port", cfg.Port).Msg("bookstore API listening")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.LogPretty {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// newNotifier picks SES when a sender address is configured, log-only
// otherwise. Either way the sink sits behind a circuit breaker.
func newNotifier(ctx context.Context, cfg *config.Config, log zerolog.Logger) notify.Notifier {
	if cfg.SESSender == "" {
		return notify.WithBreaker(notify.NewLogNotifier(log))
	}

	sesNotifier, err := notify.NewSESNotifier(ctx, notify.SESConfig{
		Region:    cfg.AWSRegion,
		AccessKey: cfg.AWSAccessKey,
		SecretKey: cfg.AWSSecretKey,
		Sender:    cfg.SESSender,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure SES notifier")
	}

	return notify.WithBreaker(sesNotifier)
}
