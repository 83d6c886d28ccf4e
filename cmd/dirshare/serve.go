package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/calebsm/dirshare/certs"
	"github.com/calebsm/dirshare/config"
	dirsharehttp "github.com/calebsm/dirshare/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the file server",
	Long:  `Start serving the configured directory over HTTP or HTTPS.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	info, err := os.Stat(cfg.Storage.Directory)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%q is not a directory", cfg.Storage.Directory)
	}

	root, err := os.OpenRoot(cfg.Storage.Directory)
	if err != nil {
		return fmt.Errorf("open served directory: %w", err)
	}
	defer func() { _ = root.Close() }()

	useTLS := cfg.TLS.Enabled
	if useTLS {
		if err := certs.EnsureCertificate(cfg.TLS.Cert, cfg.TLS.Key); err != nil {
			// Bootstrap failure downgrades to plaintext instead of exiting.
			slog.Error("certificate bootstrap failed, HTTPS will not be available", "err", err)
			useTLS = false
		}
	}

	handlerCfg := dirsharehttp.HandlerConfig{
		UploadsEnabled: cfg.Uploads.Enabled,
		MaxUploadBytes: cfg.Uploads.MaxBodySize,
		CORS:           cfg.CORS,
	}
	handler := dirsharehttp.NewHandler(&handlerCfg, root)

	addr := net.JoinHostPort(cfg.Server.Bind, strconv.Itoa(cfg.Server.Port))

	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
	}()

	logBanner(cfg, useTLS)

	if useTLS {
		err = server.ListenAndServeTLS(cfg.TLS.Cert, cfg.TLS.Key)
	} else {
		err = server.ListenAndServe()
	}
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

func logBanner(cfg *config.Config, useTLS bool) {
	scheme := "http"
	if useTLS {
		scheme = "https"
	}

	absDir, err := filepath.Abs(cfg.Storage.Directory)
	if err != nil {
		absDir = cfg.Storage.Directory
	}

	slog.Info("dirshare running",
		"protocol", scheme,
		"directory", absDir,
		"local_url", fmt.Sprintf("%s://localhost:%d", scheme, cfg.Server.Port),
		"network_url", fmt.Sprintf("%s://%s:%d", scheme, localIP(), cfg.Server.Port),
		"uploads", cfg.Uploads.Enabled,
	)
}
