package devtools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakinah-dev/sakinah/pkg/scale"
	"github.com/sakinah-dev/sakinah/pkg/store"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and hub logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithGatherer sets the registry served on /metrics.
// Default: prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithScaler sets where /scale gets its scaler. Default: scale.Default.
func WithScaler(fn func() scale.Scaler) Option {
	return func(s *Server) {
		if fn != nil {
			s.scaler = fn
		}
	}
}

// Server is the devtools HTTP handler.
type Server struct {
	registry *store.Registry
	hub      *Hub
	gatherer prometheus.Gatherer
	scaler   func() scale.Scaler
	logger   *slog.Logger
	upgrader websocket.Upgrader
	router   chi.Router
}

// New creates a devtools server over the stores in reg.
func New(reg *store.Registry, opts ...Option) *Server {
	s := &Server{
		registry: reg,
		gatherer: prometheus.DefaultGatherer,
		scaler:   scale.Default,
		logger:   slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = NewHub(s.logger)
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/stores", func(r chi.Router) {
		r.Get("/", s.listStores)
		r.Get("/{name}", s.getStore)
		r.Get("/{name}/watch", s.watchStore)
	})
	r.Get("/scale", s.getScale)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the watch hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Serve serves on ln until ctx is done, then shuts down gracefully within
// shutdownTimeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("devtools listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		s.hub.Close()
		return err
	case <-ctx.Done():
	}

	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close disconnects watch clients.
func (s *Server) Close() {
	s.hub.Close()
}

type storeInfo struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}

func (s *Server) listStores(w http.ResponseWriter, _ *http.Request) {
	names := s.registry.Names()
	out := make([]storeInfo, 0, len(names))
	for _, name := range names {
		st, _ := s.registry.Lookup(name)
		out = append(out, storeInfo{Name: name, Fields: st.Fields()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (store.Inspectable, bool) {
	name := chi.URLParam(r, "name")
	st, ok := s.registry.Lookup(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown store "+strconv.Quote(name))
	}
	return st, ok
}

func (s *Server) getStore(w http.ResponseWriter, r *http.Request) {
	st, ok := s.lookup(w, r)
	if !ok {
		return
	}
	data, err := st.MarshalState()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) watchStore(w http.ResponseWriter, r *http.Request) {
	st, ok := s.lookup(w, r)
	if !ok {
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	conn.SetReadLimit(maxMessageSize)

	c := newClient(conn, st.Name(), clientBuffer)
	if err := s.hub.join(st, c); err != nil {
		s.logger.Warn("devtools: watch snapshot failed", "store", st.Name(), "error", err)
		c.close()
		return
	}
	go c.writeLoop()

	// Clients never send; reading detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.hub.leave(c)
}

// ScaleResult is the /scale response.
type ScaleResult struct {
	Size               float64        `json:"size"`
	Factor             float64        `json:"factor"`
	Scale              float64        `json:"scale"`
	VerticalScale      float64        `json:"verticalScale"`
	ModerateScale      float64        `json:"moderateScale"`
	ResponsiveFontSize float64        `json:"responsiveFontSize"`
	Geometry           scale.Geometry `json:"geometry"`
}

// Compute fills every result for size and factor using sc.
func Compute(sc scale.Scaler, size, factor float64) ScaleResult {
	return ScaleResult{
		Size:               size,
		Factor:             factor,
		Scale:              sc.Scale(size),
		VerticalScale:      sc.VerticalScale(size),
		ModerateScale:      sc.ModerateScale(size, factor),
		ResponsiveFontSize: sc.ResponsiveFontSize(size),
		Geometry:           sc.Geometry(),
	}
}

func (s *Server) getScale(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	size, err := strconv.ParseFloat(q.Get("size"), 64)
	if err != nil || math.IsNaN(size) || math.IsInf(size, 0) {
		writeError(w, http.StatusBadRequest, "size must be a number")
		return
	}
	factor := scale.DefaultModerateFactor
	if raw := q.Get("factor"); raw != "" {
		if factor, err = strconv.ParseFloat(raw, 64); err != nil || math.IsNaN(factor) || math.IsInf(factor, 0) {
			writeError(w, http.StatusBadRequest, "factor must be a number")
			return
		}
	}
	writeJSON(w, http.StatusOK, Compute(s.scaler(), size, factor))
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("devtools request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
