// Package httpstatus exposes a read-only JSON status endpoint: live budget
// gauges and the last N published verdicts, for CI orchestration to poll
// instead of scraping logs (SPEC_FULL.md §9, grounded on the teacher's
// internal/interfaces/http server).
package httpstatus

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/sawpanic/probatest/internal/domain/budget"
	"github.com/sawpanic/probatest/internal/publisher"
)

// Config configures the status server's binding and timeouts.
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxVerdicts  int
}

// DefaultConfig matches the teacher's local-only, conservative defaults.
func DefaultConfig() Config {
	return Config{
		Host:         "127.0.0.1",
		Port:         8089,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		MaxVerdicts:  50,
	}
}

// Server is the read-only status HTTP server.
type Server struct {
	router *mux.Router
	server *http.Server
	config Config

	mu       sync.Mutex
	verdicts []publisher.PublishedVerdict
	stack    *budget.Stack
}

// NewServer constructs and binds a status server. stack is the budget stack
// whose live consumption is reported; it may be nil before a run starts.
func NewServer(cfg Config, stack *budget.Stack) (*Server, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("port %d is busy or unavailable: %w", cfg.Port, err)
	}
	listener.Close()

	s := &Server{
		router: mux.NewRouter(),
		config: cfg,
		stack:  stack,
	}
	s.setupRoutes()
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.jsonContentTypeMiddleware)

	s.router.HandleFunc("/healthz", s.handleHealthz).Methods("GET")
	s.router.HandleFunc("/budget", s.handleBudget).Methods("GET")
	s.router.HandleFunc("/verdicts", s.handleVerdicts).Methods("GET")
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()[:8]
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type requestIDKey struct{}

func (s *Server) jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type monitorStatus struct {
	Scope          string `json:"scope"`
	ElapsedMs      int64  `json:"elapsedMs"`
	TokensConsumed int64  `json:"tokensConsumed"`
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	stack := s.stack
	s.mu.Unlock()

	if stack == nil {
		json.NewEncoder(w).Encode(map[string]any{"monitors": []monitorStatus{}})
		return
	}

	monitors := make([]monitorStatus, 0, len(stack.Monitors()))
	for _, m := range stack.Monitors() {
		monitors = append(monitors, monitorStatus{
			Scope:          string(m.Scope()),
			ElapsedMs:      m.ElapsedMs(),
			TokensConsumed: m.TokensConsumed(),
		})
	}
	json.NewEncoder(w).Encode(map[string]any{"monitors": monitors})
}

func (s *Server) handleVerdicts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	json.NewEncoder(w).Encode(map[string]any{"verdicts": s.verdicts})
}

// RecordVerdict appends to the bounded in-memory verdict history, evicting
// the oldest entry once MaxVerdicts is exceeded.
func (s *Server) RecordVerdict(pv publisher.PublishedVerdict) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verdicts = append(s.verdicts, pv)
	if len(s.verdicts) > s.config.MaxVerdicts {
		s.verdicts = s.verdicts[len(s.verdicts)-s.config.MaxVerdicts:]
	}
}

// SetStack swaps the budget stack being reported, called once per run start.
func (s *Server) SetStack(stack *budget.Stack) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stack = stack
}

// ListenAndServe blocks serving the status endpoint until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.server.Addr).Msg("status server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
