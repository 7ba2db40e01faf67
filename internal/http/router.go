package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/pillbox/internal/http/importcsv"
	"github.com/MrJamesThe3rd/pillbox/internal/http/products"
	"github.com/MrJamesThe3rd/pillbox/internal/http/report"
	"github.com/MrJamesThe3rd/pillbox/internal/http/sales"
)

func New(
	productsV1 *products.Handler,
	salesV1 *sales.Handler,
	importV1 *importcsv.Handler,
	reportV1 *report.Handler,
	metricsHandler http.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	if metricsHandler != nil {
		router.Handle("/metrics", metricsHandler)
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			productsV1.Routes(r)
		})

		r.Route("/sales", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			salesV1.Routes(r)
		})

		r.Route("/import", importV1.Routes)

		r.Route("/reports", reportV1.Routes)
	})

	return router
}
