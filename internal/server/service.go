package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-sitegen/internal/logging"
	"github.com/goliatone/go-sitegen/pkg/interfaces"
)

var errOutputRequired = errors.New("server: output directory is required")

const (
	// DefaultPort is the conventional static-site preview port.
	DefaultPort = 1313

	shutdownTimeout = 5 * time.Second
)

// Service serves built artifacts during development.
type Service interface {
	// Serve blocks until ctx is cancelled. A shutdown through ctx returns nil.
	Serve(ctx context.Context) error
	// Handler exposes the preview handler for embedding and tests.
	Handler() http.Handler
}

// Config captures preview server behaviour.
type Config struct {
	OutputDir string
	Host      string
	Port      int
}

// Dependencies lists collaborators for the preview server.
type Dependencies struct {
	Logger interfaces.Logger
}

// NewService wires a preview server over the output directory. A zero port
// binds an ephemeral one; the runtime configuration applies DefaultPort when
// the server section leaves the port unset.
func NewService(cfg Config, deps Dependencies) Service {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &service{cfg: cfg, logger: logger}
}

type service struct {
	cfg    Config
	logger interfaces.Logger
}

func (s *service) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(s.cfg.OutputDir) == "" {
		return errOutputRequired
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	s.logger.Info("server.start",
		"addr", listener.Addr().String(),
		"dir", s.cfg.OutputDir,
	)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		<-errCh
		s.logger.Info("server.stop")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: serve: %w", err)
	}
}

// Handler serves artifacts with caching disabled so edits show up on reload.
// Directory requests outside the root only resolve when an index document
// exists, so the preview never emits directory listings.
func (s *service) Handler() http.Handler {
	fileServer := http.FileServer(http.Dir(s.cfg.OutputDir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") && r.URL.Path != "/" {
			index := filepath.Join(s.cfg.OutputDir, filepath.FromSlash(r.URL.Path), "index.html")
			if _, err := os.Stat(index); os.IsNotExist(err) {
				http.NotFound(w, r)
				return
			}
		}
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		s.logger.Debug("server.request", "path", r.URL.Path)
		fileServer.ServeHTTP(w, r)
	})
}
