package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ivlev/overlaysteg/internal/config"
	"github.com/ivlev/overlaysteg/internal/overlay"
	"github.com/ivlev/overlaysteg/internal/source"
)

var encodeFlags struct {
	Input    string
	Output   string
	Message  string
	Strength float64
	FontSize int
	HOffset  float64
	VOffset  float64
	Font     string
	Pattern  string
	Page     int
}

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Embed a message as a low-contrast overlay",
	Long: `Draws the message in white onto the image at alpha 255*strength*0.5 and
writes the result as PNG (default <name>_encoded.png next to the input).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if encodeFlags.Message == "" {
			return fmt.Errorf("encode: --message is required")
		}

		img, name, err := loadInput(encodeFlags.Input, encodeFlags.Page)
		if err != nil {
			return err
		}

		opts := embedOptions(cmd, encodeFlags.Message)
		if opts.FontSize < config.MinFontSize || opts.FontSize > config.MaxFontSize {
			return fmt.Errorf("encode: font size %d outside [%d, %d]", opts.FontSize, config.MinFontSize, config.MaxFontSize)
		}

		res, err := overlay.NewEmbedder(nil).Embed(img, opts)
		if err != nil {
			return err
		}

		out := outputPath(encodeFlags.Output, encodeFlags.Input, name, "encoded")
		if err := source.SavePNG(out, res.Image); err != nil {
			return err
		}

		log.Info().
			Str("output", out).
			Stringer("rect", res.Bounds).
			Uint8("alpha", res.Alpha).
			Msg("message embedded")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)

	d := config.Default().Embed
	f := encodeCmd.Flags()
	f.StringVarP(&encodeFlags.Input, "input", "i", "", "Image or PDF to encode (required)")
	encodeCmd.MarkFlagRequired("input")
	f.StringVarP(&encodeFlags.Output, "output", "o", "", "Output PNG path")
	f.StringVarP(&encodeFlags.Message, "message", "m", "", "Message to hide (required)")
	f.Float64VarP(&encodeFlags.Strength, "strength", "s", d.Strength, "Overlay strength, 0.0 to 1.0")
	f.IntVar(&encodeFlags.FontSize, "font-size", d.FontSize, fmt.Sprintf("Font size in pixels, %d to %d", config.MinFontSize, config.MaxFontSize))
	f.Float64Var(&encodeFlags.HOffset, "h-offset", d.HOffset, "-1.0 = left, 0.0 = center, 1.0 = right")
	f.Float64Var(&encodeFlags.VOffset, "v-offset", d.VOffset, "-1.0 = top, 0.0 = center, 1.0 = bottom")
	f.StringVar(&encodeFlags.Font, "font", d.Font, "TrueType font name or path; falls back to a built-in font")
	f.StringVar(&encodeFlags.Pattern, "pattern", d.Pattern, "Overlay pattern: text or qr")
	f.IntVar(&encodeFlags.Page, "page", 0, "PDF page (0-based)")
}

// embedOptions starts from the loaded config and applies only the flags the
// user actually set.
func embedOptions(cmd *cobra.Command, message string) overlay.Options {
	opts := cfg.Embed.Options(message)
	f := cmd.Flags()

	if f.Changed("strength") {
		opts.Strength = encodeFlags.Strength
	}
	if f.Changed("font-size") {
		opts.FontSize = encodeFlags.FontSize
	}
	if f.Changed("h-offset") {
		opts.HOffset = encodeFlags.HOffset
	}
	if f.Changed("v-offset") {
		opts.VOffset = encodeFlags.VOffset
	}
	if f.Changed("font") {
		opts.FontName = encodeFlags.Font
	}
	if f.Changed("pattern") {
		opts.Pattern = encodeFlags.Pattern
	}
	return opts
}
