package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/hazyhaar/partmatch/pkg/kit"
	"github.com/hazyhaar/partmatch/pkg/parts"
)

// NewRouter returns an http.Handler with all partmatch API routes.
func NewRouter(svc Service) http.Handler {
	mux := http.NewServeMux()
	h := &handler{
		extract:    svc.wrap("extract", extractEndpoint(svc.Extractor)),
		compatible: svc.wrap("compatible", compatibleEndpoint(svc.Catalog, svc.Metrics)),
		listComps:  svc.wrap("list_components", listComponentsEndpoint(svc.Catalog)),
		getComp:    svc.wrap("get_component", getComponentEndpoint(svc.Catalog)),
		svc:        svc,
	}

	mux.HandleFunc("GET /v1/extract", methodNotAllowed)
	mux.HandleFunc("POST /v1/extract", h.handleExtract)
	mux.HandleFunc("GET /v1/components", h.handleListComponents)
	mux.HandleFunc("GET /v1/components/{name}", h.handleGetComponent)
	mux.HandleFunc("GET /v1/compatible", h.handleCompatible)
	mux.HandleFunc("GET /v1/health", h.handleHealth)
	if svc.Metrics != nil {
		mux.Handle("GET /metrics", svc.Metrics.Handler())
	}

	return cors(requestID(mux))
}

type handler struct {
	extract    kit.Endpoint
	compatible kit.Endpoint
	listComps  kit.Endpoint
	getComp    kit.Endpoint
	svc        Service
}

// --- extract ---

func (h *handler) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxTextBytes+4096)
	var req extractReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	resp, err := h.extract(r.Context(), &req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- compatible ---

func (h *handler) handleCompatible(w http.ResponseWriter, r *http.Request) {
	q, err := parts.ParseQuery(r.URL.Query().Get("voltage"), r.URL.Query().Get("temperature"))
	if err != nil {
		if h.svc.Metrics != nil {
			h.svc.Metrics.ObserveQuery(0, err)
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.compatible(r.Context(), &q)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- components ---

func (h *handler) handleListComponents(w http.ResponseWriter, r *http.Request) {
	resp, err := h.listComps(r.Context(), nil)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleGetComponent(w http.ResponseWriter, r *http.Request) {
	resp, err := h.getComp(r.Context(), r.PathValue("name"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- health ---

type healthResponse struct {
	Status     string          `json:"status"`
	Components int             `json:"components"`
	Stats      parts.LoadStats `json:"stats"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		Components: h.svc.Catalog.Count(),
		Stats:      h.svc.Catalog.Stats(),
	})
}

// --- helpers ---

func statusFor(err error) int {
	switch {
	case errors.Is(err, parts.ErrInvalidQuery), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// requestID propagates X-Request-ID, generating one when absent.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := kit.WithTransport(kit.WithRequestID(r.Context(), id), "http")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
