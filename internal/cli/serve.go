package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/tensionlab/pkg/api"
)

const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the diagram API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			defaults, err := cfg.DefaultState()
			if err != nil {
				return err
			}
			backend, st, err := c.openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeBackend(c, backend)

			srv := api.New(api.Options{
				Backend:  backend,
				Keyer:    st.Keyer(),
				Codec:    st.CodecOrDefault(),
				TTL:      st.TTL,
				Frame:    cfg.Canvas.Frame(),
				Defaults: &defaults,
				Logger:   loggerFromContext(cmd.Context()),

				MaxSessions: cfg.Server.MaxSessions,
				IdleTimeout: cfg.Server.IdleTimeout,
			})

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			printSuccess("Listening on %s", StyleLink.Render("http://"+ln.Addr().String()))
			printDetail("storage: %s, codec: %s", st.Backend, st.CodecOrDefault().Name())
			return serve(cmd.Context(), ln, srv.Handler())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

// serve runs h on ln until ctx is cancelled, then shuts down gracefully.
func serve(ctx context.Context, ln net.Listener, h http.Handler) error {
	logger := loggerFromContext(ctx)
	hs := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := hs.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return hs.Shutdown(sctx)
	})
	return g.Wait()
}
