package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yuzvak/storefront-cart/internal/infrastructure/http/middleware"
	"github.com/yuzvak/storefront-cart/internal/infrastructure/monitoring"
)

// Handler builds the routed API. Route names double as metric labels.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet).Name("metrics")
	r.HandleFunc("/health", s.healthHandler.HandleHealth).Methods(http.MethodGet).Name("health")

	c := r.PathPrefix("/cart").Subrouter()
	c.Use(middleware.NewSessionMiddleware())
	c.HandleFunc("", s.cartHandler.HandleGetCart).Methods(http.MethodGet).Name("get_cart")
	c.HandleFunc("", s.cartHandler.HandleClearCart).Methods(http.MethodDelete).Name("clear_cart")
	c.HandleFunc("/items", s.cartHandler.HandleAddItem).Methods(http.MethodPost).Name("add_item")
	c.HandleFunc("/items/{id}", s.cartHandler.HandleUpdateQuantity).Methods(http.MethodPatch).Name("update_quantity")
	c.HandleFunc("/items/{id}", s.cartHandler.HandleRemoveItem).Methods(http.MethodDelete).Name("remove_item")
	c.HandleFunc("/visibility", s.cartHandler.HandleToggleVisibility).Methods(http.MethodPost).Name("toggle_visibility")
	c.HandleFunc("/checkout", s.checkoutHandler.HandleCheckout).Methods(http.MethodPost).Name("checkout")

	r.Use(monitoring.HTTPMetricsMiddleware)

	var handler http.Handler = r
	handler = middleware.NewRecoveryMiddleware(s.logger)(handler)
	handler = middleware.NewLoggingMiddleware(s.logger)(handler)
	handler = s.corsMiddleware(handler)

	return handler
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Session-ID, X-Request-ID")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		w.Header().Set("Access-Control-Max-Age", "300")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
