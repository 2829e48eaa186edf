package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/davicafu/devcamper/internal/config"
	"github.com/davicafu/devcamper/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "devcamper",
	Short: "DevCamper bootcamp directory API",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.LoadConfig()
		logger.Init(cfg.AppEnv) // inicializa zap
	},
}

var cfg *config.Config

func main() {
	rootCmd.AddCommand(serveCmd(), seedCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
