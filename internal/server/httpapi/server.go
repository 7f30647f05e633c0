// Package httpapi exposes the gallery over JSON/HTTP using chi. Handlers map
// service errors to status codes and never log them again; failures are
// logged once where they happen.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/photogallery/internal/logging"
	"github.com/dmitrijs2005/photogallery/internal/server/auth"
	"github.com/dmitrijs2005/photogallery/internal/server/models"
	"github.com/dmitrijs2005/photogallery/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	defaultMaxBodyBytes    = 50 << 20
	defaultShutdownTimeout = 15 * time.Second
)

// Users is the account surface used by the handlers.
type Users interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	Profile(ctx context.Context, userID int64) (*models.User, []services.AssetView, error)
	UpdateProfile(ctx context.Context, userID int64, upd models.UserUpdate) (*models.User, error)
	Deactivate(ctx context.Context, userID int64) error
	PublicUser(ctx context.Context, userID int64) (*models.User, error)
	PublicProfile(ctx context.Context, userID int64) (*models.User, []services.AssetView, error)
}

// Assets is the asset lifecycle surface used by the handlers.
type Assets interface {
	Upload(ctx context.Context, ownerID int64, encoded, folder string) (*models.Asset, error)
	ListMine(ctx context.Context, ownerID int64) ([]services.AssetView, error)
	ListPublic(ctx context.Context) ([]services.AssetView, error)
	Get(ctx context.Context, id int64) (*services.AssetView, error)
	Delete(ctx context.Context, ownerID, id int64) error
	DeleteAllMine(ctx context.Context, ownerID int64) (int64, error)
}

// TokenVerifier validates session tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

var (
	_ Users         = (*services.UserService)(nil)
	_ Assets        = (*services.AssetService)(nil)
	_ TokenVerifier = (*auth.Manager)(nil)
)

// Options tune the HTTP server. Zero values fall back to defaults.
type Options struct {
	Address         string
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
	Gatherer        prometheus.Gatherer
}

type Server struct {
	address         string
	users           Users
	assets          Assets
	tokens          TokenVerifier
	logger          logging.Logger
	gatherer        prometheus.Gatherer
	maxBodyBytes    int64
	shutdownTimeout time.Duration
	now             func() time.Time
}

func NewServer(o Options, l logging.Logger, us Users, as Assets, tv TokenVerifier) *Server {
	s := &Server{
		address:         o.Address,
		users:           us,
		assets:          as,
		tokens:          tv,
		logger:          l.With("module", "http_server"),
		gatherer:        o.Gatherer,
		maxBodyBytes:    o.MaxBodyBytes,
		shutdownTimeout: o.ShutdownTimeout,
		now:             time.Now,
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	if s.maxBodyBytes <= 0 {
		s.maxBodyBytes = defaultMaxBodyBytes
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = defaultShutdownTimeout
	}
	return s
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on l until ctx is cancelled, then drains
// in-flight requests for at most the shutdown timeout.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", l.Addr().String())

	if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-stopped
}
