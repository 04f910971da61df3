package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/leapstack-labs/leapq/internal/server"
	"github.com/spf13/cobra"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Addr          string
	SessionSecret string
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the translation API over HTTP",
		Long: `Start an HTTP JSON API for translation, evaluation and circuit
conversion.

Endpoints:
  GET    /api/dialects     List registered dialects
  POST   /api/translate    {"dialect", "expressions", "bindings"}
  POST   /api/evaluate     {"expression", "bindings", "exact"}
  POST   /api/convert      {"circuit", "target", "bindings"}
  GET    /api/bindings     Bindings for this session
  PUT    /api/bindings     Replace the session bindings
  DELETE /api/bindings     Clear the session bindings
  GET    /api/history      Recent requests (?kind=&dialect=&limit=)

Session bindings are kept in a signed cookie and layered over the
bindings from leapq.yaml; request bindings override both.`,
		Example: `  leapq serve
  leapq serve --addr :9090
  curl -s localhost:8080/api/translate -d '{"expressions": ["2*theta"]}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Listen address (default from serve.addr)")
	cmd.Flags().StringVar(&opts.SessionSecret, "session-secret", "", "Key for signing session cookies (default from serve.session_secret)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cc := NewCommandContext(cmd)

	addr := cc.Cfg.Serve.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}
	secret := cc.Cfg.Serve.SessionSecret
	if opts.SessionSecret != "" {
		secret = opts.SessionSecret
	}

	store, err := cc.OpenHistory()
	if err != nil {
		cc.Logger.Warn("history disabled", "error", err)
	}
	defer closeStore(store)

	srv, err := server.New(server.Config{
		Addr:          addr,
		Dialect:       cc.Cfg.Dialect,
		Precision:     cc.Cfg.Precision,
		Bindings:      cc.Cfg.Bindings,
		SessionSecret: secret,
		ShutdownGrace: cc.Cfg.Serve.ShutdownGrace,
		Store:         store,
		Logger:        cc.Logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cc.Renderer.Printf("Serving on http://%s (Ctrl+C to stop)\n", addr)
	return srv.Serve(ctx)
}
