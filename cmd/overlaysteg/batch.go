package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ivlev/overlaysteg/internal/analyzer"
	"github.com/ivlev/overlaysteg/internal/engine"
	"github.com/ivlev/overlaysteg/internal/overlay"
	"github.com/ivlev/overlaysteg/internal/recipe"
	"github.com/ivlev/overlaysteg/internal/source"
	"github.com/ivlev/overlaysteg/internal/system"
)

var batchFlags struct {
	Input     string
	Recipe    string
	Mode      string
	Message   string
	OutputDir string
	Workers   int
	Intensity float64
	Stats     bool
	Locate    bool
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Encode or decode every image of a directory, a PDF or a recipe",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		if f.Changed("output-dir") {
			cfg.Batch.OutputDir = batchFlags.OutputDir
		}
		if f.Changed("workers") {
			cfg.Batch.Workers = batchFlags.Workers
		}
		if batchFlags.Stats {
			cfg.Batch.ShowStats = true
		}

		project := engine.NewBatchProject(cfg, overlay.NewEmbedder(nil))
		defer project.Close()
		if batchFlags.Locate {
			project.Detector = analyzer.NewContrastDetector()
		}

		tasks, err := batchTasks(project)
		if err != nil {
			return err
		}

		report, err := project.Run(cmd.Context(), tasks)
		if err != nil {
			return err
		}

		log.Info().
			Int("processed", report.Processed).
			Int("skipped", report.Skipped).
			Dur("elapsed", report.Elapsed).
			Msg("batch finished")
		return nil
	},
}

func batchTasks(project *engine.BatchProject) ([]engine.Task, error) {
	if batchFlags.Recipe != "" {
		r, err := recipe.Read(batchFlags.Recipe)
		if err != nil {
			return nil, err
		}
		log.Info().Str("recipe", batchFlags.Recipe).Int("jobs", len(r.Jobs)).Msg("using recipe")
		return project.TasksFromRecipe(r)
	}

	switch batchFlags.Mode {
	case recipe.ModeEncode:
		if batchFlags.Message == "" {
			return nil, fmt.Errorf("batch: --message is required to encode")
		}
	case recipe.ModeDecode:
	default:
		return nil, fmt.Errorf("batch: unknown mode %q", batchFlags.Mode)
	}

	input := batchFlags.Input
	if input == "" {
		latest, err := system.FindLatestImage("input")
		if err != nil {
			return nil, fmt.Errorf("batch: no --input given and %w", err)
		}
		input = latest
		log.Info().Str("input", input).Msg("using newest image")
	}

	cfg.Reveal.Intensity = batchFlags.Intensity

	src, err := source.Open(input)
	if err != nil {
		return nil, err
	}
	project.AddSource(src)

	if src.PageCount() == 0 {
		return nil, fmt.Errorf("batch: %s has no images", input)
	}
	return project.TasksFromSource(src, batchFlags.Mode, batchFlags.Message), nil
}

func init() {
	rootCmd.AddCommand(batchCmd)

	f := batchCmd.Flags()
	f.StringVarP(&batchFlags.Input, "input", "i", "", "Image directory, image or PDF (default: newest image in input/)")
	f.StringVar(&batchFlags.Recipe, "recipe", "", "YAML recipe listing jobs (overrides --input)")
	f.StringVar(&batchFlags.Mode, "mode", recipe.ModeEncode, "encode or decode")
	f.StringVarP(&batchFlags.Message, "message", "m", "", "Message to hide (encode)")
	f.StringVarP(&batchFlags.OutputDir, "output-dir", "o", "", "Directory for results (default from config)")
	f.Float64Var(&batchFlags.Intensity, "intensity", 1.0, "Decoding intensity, 0.0 to 1.0 (ignored with --recipe)")
	f.IntVar(&batchFlags.Workers, "workers", 0, "Parallel workers (0 = sized from CPU and memory)")
	f.BoolVar(&batchFlags.Stats, "stats", false, "Print a performance report")
	f.BoolVar(&batchFlags.Locate, "locate", false, "Log overlay regions found in decoded images")
}
