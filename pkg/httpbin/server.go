package httpbin

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/WhileEndless/go-httpbin/pkg/config"
	"github.com/WhileEndless/go-httpbin/pkg/logging"
)

// NewServer builds the http.Server for cfg. With EnableH2C the handler also
// accepts cleartext HTTP/2, both prior-knowledge and via Upgrade.
func NewServer(cfg *config.Config, logger *zap.Logger) *http.Server {
	logger = logging.OrNop(logger)
	var handler http.Handler = New(OptionsFromConfig(cfg, logger)).Handler()
	if cfg.EnableH2C {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}
	return &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ErrorLog:          zap.NewStdLog(logger),
	}
}

// Run serves on ln until ctx is done, then drains in-flight requests for at
// most shutdownTimeout. Streams still running at the deadline are cut off.
func Run(ctx context.Context, srv *http.Server, ln net.Listener, shutdownTimeout time.Duration) error {
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return err
	}
	if err := <-errc; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
