package cmd

import (
	"github.com/spf13/cobra"
)

var (
	settingsPath string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "devrelay",
	Short: "Local MITM proxy that rewrites security headers for development",
	Long: `DevRelay is a local development proxy that intercepts HTTP(S) traffic
and rewrites security-related response headers (CSP, COEP, COOP, CORP,
CORS) so browser-enforced policies do not block ad-hoc testing of
webhooks and third-party embeds.

Configure your browser or system to use the proxy, and trust the CA
certificate generated in the certificate directory.`,
}

// Execute runs the CLI and returns the process exit code: 0 on clean
// shutdown (including operator interrupt), 1 on configuration error or
// startup failure.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "settings file (default is ~/.devrelay/devrelay.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "INFO", "log level: DEBUG, INFO, WARN, ERROR")
}
