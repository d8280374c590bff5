package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/hazyhaar/prenoms-registry/pkg/kit"
	"github.com/hazyhaar/prenoms-registry/pkg/names"
)

const maxLimit = 10000

// NewRouter returns an http.Handler with all registry API routes.
func NewRouter(svc *Service) http.Handler {
	mux := http.NewServeMux()
	h := &handler{
		svc:          svc,
		listDatasets: svc.listDatasetsEndpoint(),
		totals:       svc.totalsEndpoint(),
		series:       svc.seriesEndpoint(),
		rank:         svc.rankEndpoint(),
	}

	mux.HandleFunc("GET /v1/datasets", h.handleListDatasets)
	mux.HandleFunc("GET /v1/datasets/{id}/totals", h.handleTotals)
	mux.HandleFunc("GET /v1/datasets/{id}/names/{name}", h.handleSeries)
	mux.HandleFunc("GET /v1/datasets/{id}/rankings", h.handleRankings)
	mux.HandleFunc("GET /v1/health", h.handleHealth)

	return requestID(cors(mux))
}

type handler struct {
	svc          *Service
	listDatasets kit.Endpoint
	totals       kit.Endpoint
	series       kit.Endpoint
	rank         kit.Endpoint
}

func (h *handler) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	resp, err := h.listDatasets(r.Context(), nil)
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleTotals(w http.ResponseWriter, r *http.Request) {
	sexes, err := names.ParseSexFilter(r.URL.Query().Get("sexes"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.totals(r.Context(), &totalsReq{Dataset: r.PathValue("id"), Sexes: sexes})
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleSeries(w http.ResponseWriter, r *http.Request) {
	resp, err := h.series(r.Context(), &seriesReq{Dataset: r.PathValue("id"), Name: r.PathValue("name")})
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleRankings(w http.ResponseWriter, r *http.Request) {
	req, err := parseRankQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Dataset = r.PathValue("id")

	resp, err := h.rank(r.Context(), req)
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type healthResponse struct {
	Status   string `json:"status"`
	Datasets int    `json:"datasets"`
	Records  int    `json:"records"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	for _, info := range h.svc.reg.List() {
		resp.Datasets++
		resp.Records += info.Records
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- helpers ---

func parseRankQuery(r *http.Request) (*rankReq, error) {
	q := r.URL.Query()
	sexes, err := names.ParseSexFilter(q.Get("sexes"))
	if err != nil {
		return nil, err
	}
	periods, err := parseInts(q.Get("periods"))
	if err != nil {
		return nil, errors.New("periods must be a comma-separated list of integers")
	}
	req := &rankReq{Sexes: sexes, Periods: periods}
	if v := q.Get("year"); v != "" {
		if req.Year, err = strconv.Atoi(v); err != nil {
			return nil, errors.New("year must be an integer")
		}
	}
	if v := q.Get("limit"); v != "" {
		if req.Limit, err = strconv.Atoi(v); err != nil || req.Limit < 0 || req.Limit > maxLimit {
			return nil, errors.New("limit must be an integer between 0 and 10000")
		}
	}
	return req, nil
}

// parseInts parses "3, 5,10". An empty string gives nil.
func parseInts(v string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeEndpointError maps endpoint errors to HTTP status codes.
func writeEndpointError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, kit.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, kit.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// requestID tags each request with an ID, reusing a valid X-Request-ID sent
// by the client.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := kit.WithRequestID(r.Context(), id)
		if _, ok := ctx.Value(kit.TransportKey).(string); !ok {
			ctx = kit.WithTransport(ctx, "http")
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
