package bootstrap

import (
	"net/http"

	"cachedfetch/internal/handlers"
	"cachedfetch/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func InitRoutes(fetchHandler *handlers.FetchHandler, apiToken string) chi.Router {
	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.TokenRequired(apiToken))
		r.Get("/fetch", fetchHandler.GetResource)
		r.Get("/stats", fetchHandler.GetStats)
	})

	return r
}
