package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/joshsymonds/driveloader/internal/drive"
	"github.com/joshsymonds/driveloader/internal/loader"
	"github.com/joshsymonds/driveloader/internal/rate"
	"github.com/joshsymonds/driveloader/internal/report"
	"github.com/joshsymonds/driveloader/internal/runtime"
	"github.com/joshsymonds/driveloader/internal/walk"
)

const (
	tokenFileEnv = "SERVICE_ACCOUNT_TOKEN_FILE"
	folderIDEnv  = "GOOGLE_DRIVE_FOLDER_ID"
)

type loadConfig struct {
	tokenFile string
	folderID  string
	format    string
	out       string
	interval  time.Duration
	pageSize  int
	fanOut    int
	logging   bool
	summary   bool
}

func main() {
	// a missing .env is fine; real environment variables still apply
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		runtime.DefaultLogger().Error("driveloader failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := loadConfig{}
	cmd := &cobra.Command{
		Use:           "driveloader",
		Short:         "Snapshot a Google Drive folder tree with document and spreadsheet contents",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.tokenFile, "token-file", os.Getenv(tokenFileEnv), "service account JSON key (env "+tokenFileEnv+")")
	flags.StringVar(&cfg.folderID, "folder", os.Getenv(folderIDEnv), "root folder id (env "+folderIDEnv+")")
	flags.StringVar(&cfg.format, "format", "json", "output format: json or yaml")
	flags.StringVar(&cfg.out, "out", "", "write output to this relative path instead of stdout")
	flags.DurationVar(&cfg.interval, "interval", rate.DefaultInterval, "minimum spacing between API requests")
	flags.IntVar(&cfg.pageSize, "page-size", walk.DefaultPageSize, "Drive list page size (<=1000)")
	flags.IntVar(&cfg.fanOut, "fan-out", 0, "max concurrent children per folder (0 = unbounded)")
	flags.BoolVar(&cfg.logging, "logging", true, "log progress to stderr (env "+loader.LoggingEnv+")")
	flags.BoolVar(&cfg.summary, "summary", false, "print a human outline instead of the full tree")
	return cmd
}

func run(parent context.Context, cfg loadConfig) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.tokenFile == "" {
		return fmt.Errorf("--token-file or %s is required", tokenFileEnv)
	}
	if cfg.folderID == "" {
		return fmt.Errorf("--folder or %s is required", folderIDEnv)
	}
	format, err := report.ParseFormat(cfg.format)
	if err != nil {
		return err
	}

	cred, err := runtime.LoadCredentialFile(cfg.tokenFile)
	if err != nil {
		return fmt.Errorf("load service account key: %w", err)
	}

	tree, err := loader.Load(ctx, loader.Options{
		ServiceAccountToken: cred,
		ItemID:              drive.ItemID(cfg.folderID),
		Logging:             cfg.logging,
		Interval:            cfg.interval,
		PageSize:            cfg.pageSize,
		FanOut:              cfg.fanOut,
	})
	if err != nil {
		return err
	}

	if cfg.summary {
		if printErr := report.PrintHuman(tree, os.Stdout); printErr != nil {
			return fmt.Errorf("print summary: %w", printErr)
		}
		return nil
	}
	if cfg.out == "" {
		return report.Encode(tree, format, os.Stdout)
	}
	if writeErr := report.WriteFile(tree, format, cfg.out); writeErr != nil {
		return fmt.Errorf("write %s: %w", cfg.out, writeErr)
	}
	return nil
}
