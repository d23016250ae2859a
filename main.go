package main

import (
	"fmt"
	"os"
	"path/filepath"

	"devrelay/cmd"
	"devrelay/config"
	"devrelay/logger"
)

func main() {
	if err := logger.Init(filepath.Join(config.DefaultCertDir(), "logs"), "INFO"); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize loggers: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic recovered in main: %v\n", r)
			logger.Close()
			os.Exit(1)
		}
	}()

	code := cmd.Execute()
	logger.Close()
	os.Exit(code)
}
