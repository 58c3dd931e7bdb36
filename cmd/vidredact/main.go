// Command vidredact redacts a fixed region in every video file of a
// directory and writes the results, audio reattached, to an output
// directory.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vidredact"
	"vidredact/internal/config"
	"vidredact/pkg/logger"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		// Startup failures exit non-zero. Per-file failures do not reach
		// here; a completed batch exits zero regardless of its count.
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath  string
	inputDir    string
	outputDir   string
	overwrite   bool
	removeAudio bool
	workers     int
	quiet       bool
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "vidredact",
		Short:         "Blur and pixelate a fixed region in every video of a directory",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "path to configuration file")
	cmd.Flags().StringVarP(&flags.inputDir, "input", "i", "", "input directory (overrides config)")
	cmd.Flags().StringVarP(&flags.outputDir, "output", "o", "", "output directory (overrides config)")
	cmd.Flags().BoolVar(&flags.overwrite, "overwrite", false, "replace existing outputs")
	cmd.Flags().BoolVar(&flags.removeAudio, "remove-audio", false, "drop the audio track")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "frame-transform workers (0 = one per CPU)")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "suppress the summary table")

	cmd.AddCommand(newSampleConfigCommand())
	return cmd
}

func newSampleConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sample-config",
		Short: "Print a documented sample configuration file",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprint(cmd.OutOrStdout(), config.Sample())
		},
	}
}

func run(cmd *cobra.Command, flags *rootFlags) error {
	cfg, warnings, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, flags, cfg)

	log, err := logger.New(cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer log.Sync()

	for _, w := range warnings {
		log.Warn("config fallback", zap.String("detail", w))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	processor, err := vidredact.New(vidredact.Config{
		FFmpegPath:  cfg.FFmpeg.FFmpegPath,
		FFprobePath: cfg.FFmpeg.FFprobePath,
		Logger:      log,
		Defaults:    cfg.Options(),
		Extensions:  cfg.Extensions(),
	})
	if err != nil {
		return err
	}
	defer processor.Close()

	if version, err := processor.ToolVersion(ctx); err == nil {
		log.Info("transcoder found", zap.String("version", version))
	}

	start := time.Now()
	batch, err := processor.ProcessBatch(ctx, cfg.Paths.InputDir, cfg.Paths.OutputDir)
	if err != nil {
		return err
	}

	if !flags.quiet {
		renderSummary(cmd, batch, time.Since(start))
	}
	return nil
}

func applyFlagOverrides(cmd *cobra.Command, flags *rootFlags, cfg *config.Config) {
	if flags.inputDir != "" {
		cfg.Paths.InputDir = flags.inputDir
	}
	if flags.outputDir != "" {
		cfg.Paths.OutputDir = flags.outputDir
	}
	if cmd.Flags().Changed("overwrite") {
		cfg.Paths.Overwrite = flags.overwrite
	}
	if cmd.Flags().Changed("remove-audio") {
		cfg.Processing.RemoveAudio = flags.removeAudio
	}
	if cmd.Flags().Changed("workers") {
		cfg.Processing.Workers = flags.workers
	}
}

func renderSummary(cmd *cobra.Command, batch *vidredact.BatchResult, took time.Duration) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"File", "State", "Frames", "Time", "Error"})

	for _, r := range batch.Results {
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		t.AppendRow(table.Row{
			r.Input.Name(),
			string(r.State),
			r.FramesRead,
			r.Duration.Round(time.Millisecond),
			errText,
		})
	}
	t.AppendFooter(table.Row{
		"succeeded",
		fmt.Sprintf("%d/%d", batch.Succeeded, batch.Total),
		"", took.Round(time.Millisecond), "",
	})
	t.Render()
}
