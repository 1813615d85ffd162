// Package server exposes the marketplace over a JSON API with a server-sent
// event stream per negotiation.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/zulandar/mandi/internal/catalog"
	"github.com/zulandar/mandi/internal/negotiation"
	"github.com/zulandar/mandi/internal/prefs"
	"github.com/zulandar/mandi/internal/pricing"
	"github.com/zulandar/mandi/internal/voice"
)

// DefaultPort is used when StartOpts.Port is not set.
const DefaultPort = 8080

const defaultHeartbeat = 15 * time.Second

// Server holds the collaborators the handlers call into.
type Server struct {
	catalog *catalog.Store
	manager *negotiation.Manager
	prices  *pricing.Engine
	prefs   *prefs.State
	rec     voice.Recognizer

	heartbeat time.Duration
	origins   []string

	mu     sync.Mutex
	inputs map[string]*voice.Input // keyed by speech locale
}

// Opts holds parameters for creating a Server.
type Opts struct {
	Catalog    *catalog.Store
	Manager    *negotiation.Manager
	Prices     *pricing.Engine
	Prefs      *prefs.State
	Recognizer voice.Recognizer // defaults to voice.EchoRecognizer

	Heartbeat      time.Duration // SSE keep-alive interval
	AllowedOrigins []string      // CORS; empty allows any origin
}

// New creates a Server.
func New(opts Opts) (*Server, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("server: catalog is required")
	}
	if opts.Manager == nil {
		return nil, fmt.Errorf("server: manager is required")
	}
	if opts.Prefs == nil {
		return nil, fmt.Errorf("server: prefs is required")
	}
	if opts.Prices == nil {
		opts.Prices = pricing.NewEngine(pricing.EngineOpts{})
	}
	if opts.Recognizer == nil {
		opts.Recognizer = voice.EchoRecognizer{}
	}
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = defaultHeartbeat
	}
	return &Server{
		catalog:   opts.Catalog,
		manager:   opts.Manager,
		prices:    opts.Prices,
		prefs:     opts.Prefs,
		rec:       opts.Recognizer,
		heartbeat: opts.Heartbeat,
		origins:   opts.AllowedOrigins,
		inputs:    make(map[string]*voice.Input),
	}, nil
}

// Router returns the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(s.corsConfig()))
	s.registerRoutes(router)
	return router
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(s.origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.origins
	}
	return cfg
}

// StartOpts holds configuration for the HTTP listener.
type StartOpts struct {
	Server *Server
	Port   int
	Out    io.Writer
}

// Start launches the HTTP server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Server == nil {
		return fmt.Errorf("server: server is required")
	}
	if opts.Port <= 0 {
		opts.Port = DefaultPort
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: opts.Server.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Mandi API listening on http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// input returns the shared microphone for a speech locale.
func (s *Server) input(lang string) *voice.Input {
	in := voice.NewInput(s.rec, lang)
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.inputs[in.Locale()]; ok {
		return existing
	}
	s.inputs[in.Locale()] = in
	return in
}
