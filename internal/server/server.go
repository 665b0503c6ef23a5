// Package server is the interactive web shell: upload an image once, then
// tweak the overlay or reveal parameters and get a fresh PNG per change.
package server

import (
	"context"
	"crypto/rand"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"html/template"
	"image"
	"net"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/ivlev/overlaysteg/internal/config"
	"github.com/ivlev/overlaysteg/internal/overlay"
)

//go:embed templates/index.html
var templates embed.FS

// errUnknownUpload is returned for ids that never existed or have expired.
var errUnknownUpload = errors.New("unknown or expired upload")

type upload struct {
	Image  image.Image
	Format string
}

type Server struct {
	cfg      *config.Config
	embedder *overlay.Embedder
	uploads  *cache.Cache
	limiter  *rate.Limiter
	page     *template.Template
}

func New(cfg *config.Config, emb *overlay.Embedder) (*Server, error) {
	page, err := template.ParseFS(templates, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("server: parse template: %w", err)
	}

	ttl := cfg.Server.UploadTTL
	return &Server{
		cfg:      cfg,
		embedder: emb,
		uploads:  cache.New(ttl, 2*ttl),
		limiter:  rate.NewLimiter(rate.Limit(cfg.Server.RatePerSecond), cfg.Server.RateBurst),
		page:     page,
	}, nil
}

// Handler returns the routed handler wrapped in logging and rate limiting.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	RegisterRoutes(mux, s)
	return s.logRequests(s.rateLimit(mux))
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests for up to five seconds.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Info().Msg("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func (s *Server) store(img image.Image, format string) (string, error) {
	var raw [16]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", fmt.Errorf("server: upload id: %w", err)
	}
	id := hex.EncodeToString(raw[:])

	s.uploads.SetDefault(id, &upload{Image: img, Format: format})
	return id, nil
}

func (s *Server) lookup(id string) (*upload, error) {
	v, ok := s.uploads.Get(id)
	if !ok {
		return nil, errUnknownUpload
	}
	return v.(*upload), nil
}
