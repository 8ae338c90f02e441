package httpapi

import (
	"expvar"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter registers HTTP routes and returns the handler with
// middleware.
func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(WithRequestID, WithLogging)

	r.Get("/products", app.listProductsHandler)
	r.Get("/products/{id}", app.getProductHandler)

	r.Route("/cart", func(c chi.Router) {
		c.Get("/", app.getCartHandler)
		c.Post("/items", app.addCartItemHandler)
		c.Put("/items/{id}", app.updateCartItemHandler)
		c.Delete("/items/{id}", app.removeCartItemHandler)
	})

	r.Post("/checkout", app.checkoutHandler)

	r.Get("/healthz", app.healthHandler)
	r.Get("/debug/metrics", app.metricsHandler)
	r.Handle("/debug/vars", expvar.Handler())
	r.Get("/openapi.yaml", app.openapiHandler)

	return r
}
