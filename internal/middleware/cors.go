package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows the widget to be embedded on any origin.
var CORS = cors.Handler(cors.Options{
	AllowedOrigins:       []string{"*"},
	AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	AllowedHeaders:       []string{"Content-Type", "X-Request-Id"},
	ExposedHeaders:       []string{"X-Request-Id"},
	MaxAge:               300,
	OptionsSuccessStatus: http.StatusNoContent,
})
