package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"devrelay/config"
	"devrelay/core"
	"devrelay/logger"
)

var initCACertDir string

var initCACmd = &cobra.Command{
	Use:   "init-ca",
	Short: "Generates the root CA certificate and key used for interception",
	Long: `Generates a fresh self-signed root CA in the certificate directory.
The proxy does this automatically on first start; run it manually to
pre-provision or rotate the CA.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Init(filepath.Join(initCACertDir, "logs"), logLevelFlag); err != nil {
			return err
		}
		if err := core.GenerateAndSaveCA(initCACertDir); err != nil {
			return err
		}
		certPath, _ := core.CertPaths(initCACertDir)
		fmt.Printf("CA certificate saved to %s\n", certPath)
		fmt.Println("Import it into your browser or system trust store to intercept HTTPS.")
		return nil
	},
}

func init() {
	initCACmd.Flags().StringVar(&initCACertDir, "certdir", config.DefaultCertDir(), "certificate directory")
	rootCmd.AddCommand(initCACmd)
}
