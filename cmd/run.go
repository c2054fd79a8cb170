package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/mselser95/dex-arb/internal/app"
	"github.com/mselser95/dex-arb/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the arbitrage monitor",
	Long: `Starts the arbitrage monitor, which will:
1. Derive the pair's pool address on every configured venue
2. Sample each pool's current price at the poll interval
3. Evaluate the cross-venue spread against the threshold
4. Hand qualifying spreads to the flash-loan trigger (if enabled)

Use --monitor-only to suppress triggering regardless of configuration.`,
	RunE: runMonitor,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolP("monitor-only", "m", false, "Evaluate and report spreads without triggering execution")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	// Load .env if present; the environment wins over the file
	_ = godotenv.Load()

	// Load config
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Create logger
	logger, err := config.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Get flags
	monitorOnly, _ := cmd.Flags().GetBool("monitor-only")

	// Create app with options
	opts := &app.Options{
		MonitorOnly: monitorOnly,
	}

	application, err := app.New(cfg, logger, opts)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	// Run app
	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
