package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ivlev/overlaysteg/internal/recipe"
	"github.com/ivlev/overlaysteg/internal/source"
)

var recipeFlags struct {
	Input   string
	Output  string
	Mode    string
	Message string
}

var recipeCmd = &cobra.Command{
	Use:   "recipe",
	Short: "Work with batch recipes",
}

var recipeInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a recipe with one job per image or PDF page",
	Long: `Scans the input and writes a YAML recipe with one job per image. Edit the
per-job message, strength, offsets or intensity, then run it with
"overlaysteg batch --recipe <file>".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if m := recipeFlags.Mode; m != recipe.ModeEncode && m != recipe.ModeDecode {
			return fmt.Errorf("recipe: unknown mode %q", m)
		}

		src, err := source.Open(recipeFlags.Input)
		if err != nil {
			return err
		}
		defer src.Close()

		if src.PageCount() == 0 {
			return fmt.Errorf("recipe: %s has no images", recipeFlags.Input)
		}

		r := recipe.FromSource(src, recipeFlags.Input, recipeFlags.Mode, recipeFlags.Message)

		out := recipeFlags.Output
		if out == "" {
			out = recipe.GeneratePath("recipes")
		}
		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return fmt.Errorf("recipe: %w", err)
		}
		if err := recipe.Write(r, out); err != nil {
			return err
		}

		log.Info().Str("recipe", out).Int("jobs", len(r.Jobs)).Msg("recipe written")
		return nil
	},
}

var recipeLatestCmd = &cobra.Command{
	Use:   "latest [dir]",
	Short: "Print the newest recipe in dir (default recipes/)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "recipes"
		if len(args) == 1 {
			dir = args[0]
		}

		path, err := recipe.FindLatest(dir)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recipeCmd)
	recipeCmd.AddCommand(recipeInitCmd, recipeLatestCmd)

	f := recipeInitCmd.Flags()
	f.StringVarP(&recipeFlags.Input, "input", "i", "", "Image directory, image or PDF (required)")
	recipeInitCmd.MarkFlagRequired("input")
	f.StringVarP(&recipeFlags.Output, "output", "o", "", "Recipe path (default recipes/recipe_<timestamp>.yaml)")
	f.StringVar(&recipeFlags.Mode, "mode", recipe.ModeEncode, "Mode for every job")
	f.StringVarP(&recipeFlags.Message, "message", "m", "", "Message for every job")
}
