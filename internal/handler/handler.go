package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"urlshortener/internal/model"
	"urlshortener/internal/repository"
	"urlshortener/internal/service"
)

type Handler struct {
	Service     *service.Service
	RateLimiter RateLimiter
}

type shortenRequest struct {
	URL        string `json:"url"`
	CustomPath string `json:"custom_path,omitempty"`
}

// urlResponse mirrors the mapping fields clients care about. short_url is
// the bare code; clients compose the full link.
type urlResponse struct {
	OriginalURL string    `json:"original_url"`
	ShortURL    string    `json:"short_url"`
	CreatedAt   time.Time `json:"created_at"`
	Clicks      int64     `json:"clicks"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func NewHandler(s *service.Service, rl RateLimiter) *Handler {
	return &Handler{Service: s, RateLimiter: rl}
}

func (h *Handler) Routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/shorten", h.RateLimitMiddleware(h.Shorten)).Methods("POST")
	r.HandleFunc("/stats/{code}", h.Stats).Methods("GET")
	r.HandleFunc("/{code}", h.RateLimitMiddleware(h.Redirect)).Methods("GET")

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			log.Println("request:", req.Method, req.URL.Path)
			next.ServeHTTP(w, req)
		})
	})

	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Health(r.Context()); err != nil {
		log.Println("health check failed:", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Detail: "service unhealthy: database unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "healthy",
		"database": "connected",
	})
}

func (h *Handler) Shorten(w http.ResponseWriter, r *http.Request) {
	var req shortenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid request body"})
		return
	}
	if req.URL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "url missing"})
		return
	}

	m, err := h.Service.Shorten(r.Context(), req.URL, req.CustomPath)
	if err != nil {
		h.writeShortenError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(m))
}

func (h *Handler) writeShortenError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidURL):
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid url: must be an absolute http(s) URL"})
	case errors.Is(err, service.ErrInvalidCode):
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid custom path: letters, digits, - and _ only, max 32"})
	case errors.Is(err, service.ErrCodeTaken):
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Custom URL already taken"})
	case errors.Is(err, repository.ErrCodeExists):
		// generated code clashed with an unrelated URL; not retried
		writeJSON(w, http.StatusConflict, errorResponse{Detail: "short code collision, request a custom path"})
	default:
		h.writeInternalError(w, "shorten", err)
	}
}

func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	target, err := h.Service.Resolve(r.Context(), code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Detail: "URL not found"})
			return
		}
		h.writeInternalError(w, "redirect", err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	m, err := h.Service.Stats(r.Context(), code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Detail: "URL not found"})
			return
		}
		h.writeInternalError(w, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(m))
}

func (h *Handler) RateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.RateLimiter != nil && !h.RateLimiter.Allow(r.Context(), r.RemoteAddr) {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Detail: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	}
}

// writeInternalError logs the real cause and hands the client a generic
// summary; infrastructure error text never reaches the response.
func (h *Handler) writeInternalError(w http.ResponseWriter, op string, err error) {
	log.Printf("%s failed: %v", op, err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "internal server error"})
}

func toResponse(m *model.URLMapping) urlResponse {
	return urlResponse{
		OriginalURL: m.OriginalURL,
		ShortURL:    m.ShortCode,
		CreatedAt:   m.CreatedAt,
		Clicks:      m.Clicks,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
