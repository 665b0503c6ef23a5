package recipe

import (
	"github.com/ivlev/overlaysteg/internal/config"
	"github.com/ivlev/overlaysteg/internal/overlay"
	"github.com/ivlev/overlaysteg/internal/source"
)

// pathSource is implemented by sources backed by one file per page.
type pathSource interface {
	PagePath(index int) string
}

// FromSource creates one job per page of src. Directory images become jobs
// on their own files; PDF pages keep input and carry their page index.
func FromSource(src source.Source, input, mode, message string) *Recipe {
	r := &Recipe{Version: Version}
	ps, perFile := src.(pathSource)

	for i := 0; i < src.PageCount(); i++ {
		job := Job{Input: input, Page: i, Mode: mode, Message: message}
		if perFile {
			job.Input = ps.PagePath(i)
			job.Page = 0
		}
		r.Jobs = append(r.Jobs, job)
	}

	return r
}

// EffectiveMode returns the job's mode, defaulting to encode.
func (j Job) EffectiveMode() string {
	if j.Mode == "" {
		return ModeEncode
	}
	return j.Mode
}

// Options merges the job's overlay settings over defaults.
func (j Job) Options(defaults config.EmbedConfig) overlay.Options {
	opts := defaults.Options(j.Message)

	if j.Strength != nil {
		opts.Strength = *j.Strength
	}
	if j.HOffset != nil {
		opts.HOffset = *j.HOffset
	}
	if j.VOffset != nil {
		opts.VOffset = *j.VOffset
	}
	if j.FontSize != nil {
		opts.FontSize = *j.FontSize
	}
	if j.Font != "" {
		opts.FontName = j.Font
	}
	if j.Pattern != "" {
		opts.Pattern = j.Pattern
	}

	return opts
}

// RevealIntensity returns the job's reveal intensity or the default.
func (j Job) RevealIntensity(defaults config.RevealConfig) float64 {
	if j.Intensity != nil {
		return *j.Intensity
	}
	return defaults.Intensity
}
