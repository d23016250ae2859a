package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"devrelay/addons"
	"devrelay/config"
	"devrelay/core"
	"devrelay/logger"
)

var (
	startHost      string
	startPort      int
	startCertDir   string
	disabledAddons []string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Starts the DevRelay proxy",
	Long: `Starts the intercepting proxy. The configuration is resolved from
built-in defaults, the settings file and the flags below, in ascending
precedence. Addons can be disabled by short alias or canonical name;
see 'devrelay addons' for the list.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(settingsPath, config.Overrides{
			Host:           startHost,
			Port:           startPort,
			CertDir:        startCertDir,
			DisabledAddons: disabledAddons,
		})
		if err != nil {
			return err
		}

		if err := logger.Init(filepath.Join(cfg.CertDir, "logs"), logLevelFlag); err != nil {
			return err
		}

		pipeline := addons.NewPipeline(cfg.DisabledAddons)
		logger.Info("Enabled addons: %v", pipeline.Enabled())
		if len(cfg.DisabledAddons) > 0 {
			logger.Info("Disabled addons: %v", cfg.DisabledAddons)
		}

		fmt.Printf("Starting DevRelay proxy on %s:%d\n", cfg.Host, cfg.Port)
		fmt.Printf("Certificate directory: %s\n", cfg.CertDir)
		fmt.Printf("\nPress Ctrl+C to stop the proxy\n\n")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := core.NewServer(cfg, pipeline).Run(ctx); err != nil {
			return err
		}
		fmt.Println("Shutting down...")
		return nil
	},
}

func init() {
	startCmd.Flags().StringVar(&startHost, "host", config.DefaultHost, "host address to bind to")
	startCmd.Flags().IntVarP(&startPort, "port", "p", config.DefaultPort, "port to listen on")
	startCmd.Flags().StringVar(&startCertDir, "certdir", config.DefaultCertDir(), "certificate directory")
	startCmd.Flags().StringVar(&startCertDir, "confdir", config.DefaultCertDir(), "alias for --certdir")
	startCmd.Flags().MarkHidden("confdir")
	startCmd.Flags().StringArrayVar(&disabledAddons, "disable-addon", nil, "addon to disable; repeatable, accepts comma-joined batches (e.g. CSP,COEP)")

	rootCmd.AddCommand(startCmd)
}
