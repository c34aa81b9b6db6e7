package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vibabattista/stylised-images/core"
	"github.com/vibabattista/stylised-images/logging"
)

func main() {
	var (
		seedFlag   = flag.String("seed", "", "Seed image file path or URL (overrides SEED_IMAGE)")
		planFlag   = flag.String("plan", "", "YAML sweep plan path (overrides SWEEP_PLAN)")
		stylesFlag = flag.String("styles", "", "Comma-separated style presets (overrides STYLES)")
		outFlag    = flag.String("out", "", "Output directory (overrides OUTPUT_DIR)")
		devFlag    = flag.Bool("dev", false, "Enable development logging (overrides DEV_MODE)")
	)
	flag.Parse()

	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Use fmt here since logger isn't initialized yet
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	config, err := core.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(core.ExitCodeError)
	}
	applyFlags(config, *seedFlag, *planFlag, *stylesFlag, *outFlag, *devFlag)

	// Initialize structured logger early
	logger, err := logging.New(config.DevMode, config.LogFilePath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(core.ExitCodeError)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Printf("Failed to sync logger: %v\n", syncErr)
		}
	}()

	// Log configuration values
	logger.Info("Configuration loaded",
		zap.String("backend", config.Backend),
		zap.String("seed", config.SeedSource),
		zap.String("plan", config.PlanPath),
		zap.Strings("styles", config.Styles),
		zap.String("output_dir", config.OutputDir),
		zap.Int("output_size", config.OutputSize),
		zap.Int("image_count", config.ImageCount),
		zap.Bool("sheet", config.Sheet),
		zap.Bool("continue_on_error", config.ContinueOnError),
		zap.Bool("dev_mode", config.DevMode),
	)

	os.Exit(run(config, logger))
}

// applyFlags lays command line overrides over the environment configuration.
func applyFlags(config *core.Config, seed, plan, styles, out string, dev bool) {
	if seed != "" {
		config.SeedSource = seed
	}
	if plan != "" {
		config.PlanPath = plan
	}
	if styles != "" {
		config.Styles = splitStyles(styles)
	}
	if out != "" {
		config.OutputDir = out
	}
	if dev {
		config.DevMode = true
	}
}

// splitStyles parses a comma separated style list, dropping empty entries.
func splitStyles(raw string) []string {
	parts := strings.Split(raw, ",")
	styles := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			styles = append(styles, trimmed)
		}
	}
	return styles
}
