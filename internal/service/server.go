// Package service exposes mask resolution and blending over HTTP.
//
// Each client opens a session that owns a copy of the shared mask store, so
// masks uploaded by one client never leak into another.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Faultbox/blendmask/internal/config"
	"github.com/Faultbox/blendmask/internal/metrics"
	"github.com/Faultbox/blendmask/pkg/formats"
	"github.com/Faultbox/blendmask/pkg/mask"
	"github.com/Faultbox/blendmask/pkg/math"
)

// Service errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
	ErrBadRequest      = errors.New("bad request")
)

// Deps holds the loaded data a server shares between sessions.
type Deps struct {
	Topology  *mask.Topology
	Adjacency mask.Adjacency
	Palette   *formats.Palette
	// Store holds the base masks every new session starts from.
	Store *mask.Store
}

// Server encapsulates the HTTP API server.
type Server struct {
	cfg     *config.Config
	deps    Deps
	log     *zap.Logger
	metrics *metrics.Metrics
	handler http.Handler
	server  *http.Server

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	id       string
	store    *mask.Store
	resolver *mask.Resolver
	created  time.Time
}

// NewServer creates a server. Metrics are registered on reg and served from
// /metrics; log may be nil.
func NewServer(cfg *config.Config, deps Deps, reg *prometheus.Registry, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if deps.Store == nil {
		deps.Store = mask.NewStore()
	}

	s := &Server{
		cfg:      cfg,
		deps:     deps,
		log:      log,
		metrics:  metrics.New(reg),
		sessions: make(map[string]*session),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/health", handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /v1/regions", s.handleRegions)
	mux.HandleFunc("POST /v1/regions/touched", s.handleTouched)
	mux.HandleFunc("POST /v1/sessions", s.handleCreateSession)
	mux.HandleFunc("DELETE /v1/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("GET /v1/sessions/{id}/masks", s.handleListMasks)
	mux.HandleFunc("PUT /v1/sessions/{id}/masks/{name}", s.handlePutMask)
	mux.HandleFunc("POST /v1/sessions/{id}/resolve", s.handleResolve)
	mux.HandleFunc("POST /v1/sessions/{id}/blend", s.handleBlend)

	s.handler = withLogging(log, withRecovery(log, mux))
	s.server = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      s.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start runs the HTTP server until Stop is called.
func (s *Server) Start() error {
	s.log.Info("server starting", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("server stopping")
	return s.server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	topo := s.deps.Topology
	if topo == nil {
		s.writeError(w, fmt.Errorf("%w: no topology loaded", mask.ErrNotFound))
		return
	}
	resp := RegionsResponse{VertexCount: topo.VertexCount()}
	for _, id := range topo.Regions() {
		info := RegionInfo{ID: uint32(id), Vertices: topo.RegionSize(id)}
		if s.deps.Palette != nil {
			info.Color = s.deps.Palette.Hex(id)
		}
		resp.Regions = append(resp.Regions, info)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTouched(w http.ResponseWriter, r *http.Request) {
	var req TouchedRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if s.deps.Topology == nil {
		s.writeError(w, fmt.Errorf("%w: no topology loaded", mask.ErrNotFound))
		return
	}
	regions, err := mask.RegionsTouched(req.Selection, s.deps.Topology)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := TouchedResponse{Regions: make([]uint32, len(regions))}
	for i, id := range regions {
		resp.Regions[i] = uint32(id)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.openSession()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, SessionResponse{ID: sess.id, Masks: sess.store.Len()})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.closeSession(r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMasks(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MaskListResponse{Masks: sess.store.Names()})
}

func (s *Server) handlePutMask(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req MaskRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if topo := s.deps.Topology; topo != nil && len(req.Weights) != topo.VertexCount() {
		s.writeError(w, fmt.Errorf("%w: mask has %d weights, topology has %d vertices",
			mask.ErrLengthMismatch, len(req.Weights), topo.VertexCount()))
		return
	}
	name := r.PathValue("name")
	sess.store.Put(name, mask.Weights(req.Weights))
	s.log.Debug("mask stored", zap.String("session", sess.id), zap.String("name", name))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req ResolveRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	mreq, err := s.maskRequest(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	weights, err := sess.resolver.Resolve(mreq)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ResolveResponse{MaskKey: mreq.BaseMesh, Weights: weights})
}

func (s *Server) handleBlend(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req BlendRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	mreq, err := s.maskRequest(req.ResolveRequest)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out, weights, err := sess.resolver.Apply(mreq, toPositions(req.Base), toPositions(req.Target))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BlendResponse{Positions: fromPositions(out), Weights: weights})
}

// maskRequest converts a resolve body into a mask request, mapping the mesh
// name to its mask key and filling the default iteration count. Iteration
// counts above server.max_iterations are rejected.
func (s *Server) maskRequest(req ResolveRequest) (mask.Request, error) {
	out := mask.Request{
		BaseMesh:   s.cfg.Masks.Key(req.BaseMesh),
		Overlay:    req.Overlay,
		Iterations: s.cfg.Smoothing.Iterations,
	}
	if req.Selection != nil {
		out.Selection = *req.Selection
		out.HasSelection = true
	}
	if req.Iterations != nil {
		out.Iterations = *req.Iterations
	}
	if limit := s.cfg.Server.MaxIterations; limit > 0 && out.Iterations > limit {
		return out, fmt.Errorf("%w: iterations %d exceed the limit of %d", ErrBadRequest, out.Iterations, limit)
	}
	return out, nil
}

func (s *Server) openSession() (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit := s.cfg.Server.MaxSessions; limit > 0 && len(s.sessions) >= limit {
		return nil, fmt.Errorf("%w: limit is %d", ErrTooManySessions, limit)
	}

	store := s.deps.Store.Clone()
	sess := &session{
		id:    uuid.NewString(),
		store: store,
		resolver: mask.NewResolver(s.deps.Topology, store, s.deps.Adjacency,
			mask.WithNeighborWeight(s.cfg.Smoothing.NeighborWeight),
			mask.WithLogger(s.log.Named("resolver")),
			mask.WithObserver(s.metrics)),
		created: time.Now(),
	}
	s.sessions[sess.id] = sess
	s.metrics.Sessions.Set(float64(len(s.sessions)))
	s.log.Info("session opened", zap.String("session", sess.id), zap.Int("masks", store.Len()))
	return sess, nil
}

func (s *Server) closeSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	delete(s.sessions, id)
	s.metrics.Sessions.Set(float64(len(s.sessions)))
	s.log.Info("session closed", zap.String("session", id), zap.Duration("age", time.Since(sess.created)))
	return nil
}

func (s *Server) session(id string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	return sess, nil
}

// decode reads a JSON body into v, bounded by the configured request size.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := r.Body
	if limit := s.cfg.Server.MaxRequestBytes; limit > 0 {
		body = http.MaxBytesReader(w, r.Body, limit)
	}
	if err := gojson.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid json body: %v", ErrBadRequest, err)
	}
	return nil
}

// statusFor maps an error to its HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, mask.ErrNotFound), errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, mask.ErrOutOfRange),
		errors.Is(err, mask.ErrLengthMismatch),
		errors.Is(err, mask.ErrInvalidIterations),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrTooManySessions):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
	} else {
		s.log.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	gojson.NewEncoder(w).Encode(v)
}

func toPositions(in [][3]float32) mask.Positions {
	out := make(mask.Positions, len(in))
	for i, p := range in {
		out[i] = math.Vec3{X: p[0], Y: p[1], Z: p[2]}
	}
	return out
}

func fromPositions(in mask.Positions) [][3]float32 {
	out := make([][3]float32, len(in))
	for i, p := range in {
		out[i] = [3]float32{p.X, p.Y, p.Z}
	}
	return out
}
