package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/calebsm/dirshare/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "dirshare",
	Short:   "Minimal HTTP(S) file server for ad-hoc LAN sharing",
	Long: `Dirshare serves a directory over HTTP or HTTPS with browsable
listings and optional multipart file uploads. It is meant for quickly
sharing files on a local network, not for production traffic.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configFile, cmd.Flags())
		if err != nil {
			return err
		}
		setupLogging(cfg.Log.Level)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml)")
	rootCmd.PersistentFlags().StringP("directory", "d", "", "directory to serve (default: current directory, env: DIRSHARE_STORAGE_DIRECTORY)")
	rootCmd.PersistentFlags().StringP("bind", "b", "", "address to bind to (default: all interfaces, env: DIRSHARE_SERVER_BIND)")
	rootCmd.PersistentFlags().IntP("port", "p", 0, "port to listen on (default: 8000, env: DIRSHARE_SERVER_PORT)")
	rootCmd.PersistentFlags().BoolP("uploads", "u", false, "enable file uploads (env: DIRSHARE_UPLOADS_ENABLED)")
	rootCmd.PersistentFlags().BoolP("tls", "s", false, "enable HTTPS (env: DIRSHARE_TLS_ENABLED)")
	rootCmd.PersistentFlags().String("cert", "", "TLS certificate file (default: server.crt)")
	rootCmd.PersistentFlags().String("key", "", "TLS key file (default: server.key)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
