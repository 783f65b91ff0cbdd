package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"
)

// NewServer creates an HTTP server with all routes configured. When
// adminAPIKey is set, the destructive reset endpoint requires it.
func NewServer(port string, handler *Handler, adminAPIKey string) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/portfolio/{userId}", handler.GetPortfolio)
	mux.HandleFunc("GET /api/v1/portfolio/{userId}/summary", handler.GetSummary)
	mux.HandleFunc("GET /api/v1/portfolio/{userId}/check", handler.GetCheck)
	mux.HandleFunc("GET /api/v1/portfolio/{userId}/statement.xlsx", handler.GetStatement)
	mux.HandleFunc("POST /api/v1/portfolio/{userId}/trade", handler.PostTrade)
	mux.HandleFunc("GET /api/v1/quotes/{assetType}/{assetId}", handler.GetQuote)

	resetHandler := http.HandlerFunc(handler.PostReset)
	if adminAPIKey != "" {
		mux.Handle("POST /api/v1/portfolio/{userId}/reset", requireAuth(adminAPIKey, resetHandler))
	} else {
		mux.Handle("POST /api/v1/portfolio/{userId}/reset", resetHandler)
	}

	return &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func requireAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
