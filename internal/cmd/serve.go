package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/icon-locator/internal/capture"
	"github.com/ironsheep/icon-locator/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the detection tools over MCP (stdio) or HTTP",
	Long: `Serve the detection tools.

By default the server speaks MCP (JSON-RPC 2.0) on stdin/stdout; configure it
in your MCP client. With --http it serves the same tools as a JSON API:

  GET  /healthz
  GET  /tools
  POST /tools/{name}`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveHTTP bool
	serveAddr string
)

func init() {
	serveCmd.Flags().BoolVar(&serveHTTP, "http", false, "serve HTTP instead of MCP on stdio")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	srv, err := server.New(server.Options{
		Config:     a.cfg,
		Screen:     capture.NewScreenSource(a.cfg.Capture, a.logger),
		Recognizer: a.recognizer,
		History:    a.history,
		Logger:     a.logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serveHTTP {
		addr := serveAddr
		if addr == "" {
			addr = a.cfg.Server.HTTPAddr
		}
		return srv.ListenAndServe(ctx, addr)
	}
	a.logger.Debug("mcp server starting", "version", version)
	return srv.Run(ctx)
}
