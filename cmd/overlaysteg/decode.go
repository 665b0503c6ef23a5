package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ivlev/overlaysteg/internal/analyzer"
	"github.com/ivlev/overlaysteg/internal/reveal"
	"github.com/ivlev/overlaysteg/internal/source"
)

var decodeFlags struct {
	Input     string
	Output    string
	Intensity float64
	Page      int
	Locate    bool
}

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Reveal a faint overlay with histogram equalization",
	Long: `Converts the image to grayscale and blends it with its equalized version.
Intensity 0 keeps the plain grayscale image, 1 is full equalization.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		img, name, err := loadInput(decodeFlags.Input, decodeFlags.Page)
		if err != nil {
			return err
		}

		intensity := decodeFlags.Intensity
		gray, err := reveal.Reveal(img, intensity)
		if err != nil {
			return err
		}

		out := outputPath(decodeFlags.Output, decodeFlags.Input, name, "revealed")
		if err := source.SavePNG(out, gray); err != nil {
			return err
		}
		log.Info().Str("output", out).Float64("intensity", intensity).Msg("overlay revealed")

		if !decodeFlags.Locate {
			return nil
		}

		blocks, err := analyzer.NewContrastDetector().Detect(gray)
		if err != nil {
			return err
		}
		if len(blocks) == 0 {
			fmt.Println("No overlay regions found.")
			return nil
		}
		for i, b := range blocks {
			fmt.Printf("Region %d: %v (type: %s, confidence: %.2f, contrast: %.1f)\n",
				i+1, b.Rect, b.Type, b.Confidence, analyzer.LocalContrast(gray, b.Rect))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)

	f := decodeCmd.Flags()
	f.StringVarP(&decodeFlags.Input, "input", "i", "", "Encoded image or PDF (required)")
	decodeCmd.MarkFlagRequired("input")
	f.StringVarP(&decodeFlags.Output, "output", "o", "", "Output PNG path")
	f.Float64Var(&decodeFlags.Intensity, "intensity", 1.0, "Decoding intensity, 0.0 to 1.0")
	f.IntVar(&decodeFlags.Page, "page", 0, "PDF page (0-based)")
	f.BoolVar(&decodeFlags.Locate, "locate", false, "Print regions where an overlay likely sits")
}
