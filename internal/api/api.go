// Package api serves the location index over HTTP.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/andreiashu/korloc"
	"github.com/andreiashu/korloc/internal/logger"
	"github.com/andreiashu/korloc/internal/metrics"
)

// maxLimit bounds the limit query parameter.
const maxLimit = 100

// defaultSuggestDistance is the edit distance used when none is given.
const defaultSuggestDistance = 1

// LocationView is a Location plus its display label.
type LocationView struct {
	korloc.Location
	Label string `json:"label"`
}

func viewOf(loc korloc.Location) LocationView {
	return LocationView{Location: loc, Label: korloc.FormatName(loc)}
}

func viewsOf(locs []korloc.Location) []LocationView {
	out := make([]LocationView, 0, len(locs))
	for _, l := range locs {
		out = append(out, viewOf(l))
	}
	return out
}

// Options configures a Server.
type Options struct {
	Logger          *slog.Logger
	SearchLimit     int
	NearestCache    int
	NearestCacheTTL time.Duration
}

// Server exposes an Index over HTTP.
type Server struct {
	idx     *korloc.Index
	log     *slog.Logger
	limit   int
	nearest *nearestCache
}

// New creates a Server. Zero option fields take defaults.
func New(idx *korloc.Index, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logger.L()
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = korloc.DefaultLimit
	}
	if opts.NearestCache <= 0 {
		opts.NearestCache = 1024
	}
	if opts.NearestCacheTTL <= 0 {
		opts.NearestCacheTTL = 10 * time.Minute
	}
	return &Server{
		idx:     idx,
		log:     opts.Logger,
		limit:   opts.SearchLimit,
		nearest: newNearestCache(opts.NearestCache, opts.NearestCacheTTL),
	}
}

// Routes returns the router with every endpoint registered.
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(logger.AccessMiddleware(s.log))

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	api.HandleFunc("/suggest", s.handleSuggest).Methods(http.MethodGet)
	api.HandleFunc("/nearest", s.handleNearest).Methods(http.MethodGet)
	api.HandleFunc("/locations/{id}", s.handleLocation).Methods(http.MethodGet)
	api.HandleFunc("/locations/{id}/children", s.handleChildren).Methods(http.MethodGet)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	return r
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("response_encode_error", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorBody{Error: msg})
}

// limitParam parses the limit query parameter, falling back to the server
// default and clamping to maxLimit.
func (s *Server) limitParam(r *http.Request) (int, bool) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return s.limit, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return min(n, maxLimit), true
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit, ok := s.limitParam(r)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	res := s.idx.Search(r.URL.Query().Get("q"), limit)
	metrics.Observe("search", time.Since(start), len(res) == 0)
	s.writeJSON(w, http.StatusOK, viewsOf(res))
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit, ok := s.limitParam(r)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	dist := defaultSuggestDistance
	if v := r.URL.Query().Get("distance"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "distance must be a positive integer")
			return
		}
		dist = n
	}
	res := s.idx.Suggest(r.URL.Query().Get("q"), dist, limit)
	metrics.Observe("suggest", time.Since(start), len(res) == 0)
	s.writeJSON(w, http.StatusOK, viewsOf(res))
}

func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := mux.Vars(r)["id"]
	loc, found, err := s.idx.GetByID(r.Context(), id)
	metrics.Observe("location", time.Since(start), !found)
	if err != nil {
		s.log.Error("location_lookup_error", "id", id, "err", err)
		s.writeError(w, http.StatusServiceUnavailable, "location index unavailable")
		return
	}
	if !found {
		s.writeError(w, http.StatusNotFound, "location not found")
		return
	}
	s.writeJSON(w, http.StatusOK, viewOf(loc))
}

func (s *Server) handleChildren(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := mux.Vars(r)["id"]
	_, found, err := s.idx.GetByID(r.Context(), id)
	if err != nil {
		s.log.Error("children_lookup_error", "id", id, "err", err)
		s.writeError(w, http.StatusServiceUnavailable, "location index unavailable")
		return
	}
	if !found {
		metrics.Observe("children", time.Since(start), true)
		s.writeError(w, http.StatusNotFound, "location not found")
		return
	}
	res := s.idx.Children(id)
	metrics.Observe("children", time.Since(start), len(res) == 0)
	s.writeJSON(w, http.StatusOK, viewsOf(res))
}

func (s *Server) handleNearest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	if errLat != nil || errLon != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		s.writeError(w, http.StatusBadRequest, "lat and lon must be valid coordinates")
		return
	}

	// Nothing is cached until the index is up, so an early miss isn't pinned.
	if st, _ := s.idx.State(); st != korloc.StateReady {
		metrics.Observe("nearest", time.Since(start), true)
		s.writeError(w, http.StatusServiceUnavailable, "location index not ready")
		return
	}

	key := nearestKey(lat, lon)
	loc, found, hit := s.nearest.get(key)
	if hit {
		metrics.NearestCacheHitsTotal.Inc()
	} else {
		metrics.NearestCacheMissesTotal.Inc()
		loc, found = s.idx.Nearest(lat, lon)
		s.nearest.set(key, loc, found)
	}
	metrics.Observe("nearest", time.Since(start), !found)

	if !found {
		s.writeError(w, http.StatusNotFound, "no known location nearby")
		return
	}
	s.writeJSON(w, http.StatusOK, viewOf(loc))
}

type healthBody struct {
	State     string `json:"state"`
	Locations int    `json:"locations"`
	Error     string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st, err := s.idx.State()
	body := healthBody{State: st.String(), Locations: s.idx.Len()}
	if err != nil {
		body.Error = err.Error()
	}
	status := http.StatusOK
	if st != korloc.StateReady {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, body)
}
