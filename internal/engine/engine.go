package engine

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/overlaysteg/internal/analyzer"
	"github.com/ivlev/overlaysteg/internal/config"
	"github.com/ivlev/overlaysteg/internal/overlay"
	"github.com/ivlev/overlaysteg/internal/recipe"
	"github.com/ivlev/overlaysteg/internal/reveal"
	"github.com/ivlev/overlaysteg/internal/source"
	"github.com/ivlev/overlaysteg/internal/system"
)

// typicalPixels sizes the default worker pool before any image is decoded
// (a 12 MP photo).
const typicalPixels = 4000 * 3000

// Task is one image to transform.
type Task struct {
	Index     int
	Name      string // output base name
	Output    string // explicit output path, overrides Name
	Mode      string
	Options   overlay.Options
	Intensity float64
	Load      func() (image.Image, error)
}

// Report summarizes a finished batch.
type Report struct {
	Outputs   []string // by task index, empty for skipped tasks
	Processed int
	Skipped   int
	Elapsed   time.Duration
}

// BatchProject runs encode/decode tasks in parallel.
type BatchProject struct {
	Config   *config.Config
	Embedder *overlay.Embedder
	Detector analyzer.Detector // optional, locates overlays in decoded output

	sources []source.Source
}

func NewBatchProject(cfg *config.Config, emb *overlay.Embedder) *BatchProject {
	return &BatchProject{Config: cfg, Embedder: emb}
}

// TasksFromSource creates one task per page of src, all sharing mode and the
// configured defaults.
func (p *BatchProject) TasksFromSource(src source.Source, mode, message string) []Task {
	tasks := make([]Task, src.PageCount())
	for i := range tasks {
		tasks[i] = Task{
			Index:     i,
			Name:      src.PageName(i),
			Mode:      mode,
			Options:   p.Config.Embed.Options(message),
			Intensity: p.Config.Reveal.Intensity,
			Load:      p.loader(src, i),
		}
	}
	return tasks
}

// TasksFromRecipe opens every distinct input once and resolves each job
// against the configured defaults. Sources stay open until Close.
func (p *BatchProject) TasksFromRecipe(r *recipe.Recipe) ([]Task, error) {
	opened := make(map[string]source.Source)
	tasks := make([]Task, 0, len(r.Jobs))

	for i, job := range r.Jobs {
		src, ok := opened[job.Input]
		if !ok {
			var err error
			if src, err = source.Open(job.Input); err != nil {
				return nil, fmt.Errorf("engine: job %d: %w", i, err)
			}
			opened[job.Input] = src
			p.sources = append(p.sources, src)
		}

		if job.Page < 0 || job.Page >= src.PageCount() {
			return nil, fmt.Errorf("engine: job %d: page %d out of range [0, %d)", i, job.Page, src.PageCount())
		}

		tasks = append(tasks, Task{
			Index:     i,
			Name:      src.PageName(job.Page),
			Output:    job.Output,
			Mode:      job.EffectiveMode(),
			Options:   job.Options(p.Config.Embed),
			Intensity: job.RevealIntensity(p.Config.Reveal),
			Load:      p.loader(src, job.Page),
		})
	}

	return tasks, nil
}

func (p *BatchProject) loader(src source.Source, page int) func() (image.Image, error) {
	return func() (image.Image, error) {
		return src.RenderPage(page, p.Config.Batch.DPI)
	}
}

// AddSource hands src to the project so Close releases it.
func (p *BatchProject) AddSource(src source.Source) {
	p.sources = append(p.sources, src)
}

// Close releases sources opened by TasksFromRecipe or added with AddSource.
func (p *BatchProject) Close() error {
	var first error
	for _, s := range p.sources {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	p.sources = nil
	return first
}

// Run processes tasks with a bounded worker pool. The first failure cancels
// the remaining tasks and is returned.
func (p *BatchProject) Run(ctx context.Context, tasks []Task) (*Report, error) {
	start := time.Now()

	if len(tasks) == 0 {
		return nil, fmt.Errorf("engine: nothing to process")
	}
	if err := os.MkdirAll(p.Config.Batch.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	workers := p.Config.Batch.Workers
	if workers <= 0 {
		workers = system.RecommendedWorkers(typicalPixels)
	}
	workers = min(workers, len(tasks))

	outputs := outputPaths(p.Config.Batch.OutputDir, tasks)

	log.Info().
		Int("tasks", len(tasks)).
		Int("workers", workers).
		Str("output_dir", p.Config.Batch.OutputDir).
		Msg("batch started")

	report := &Report{Outputs: make([]string, len(tasks))}
	var processed, skipped atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, t := range tasks {
		if gctx.Err() != nil {
			break
		}
		out := outputs[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			done, err := p.process(t, out)
			if err != nil {
				return fmt.Errorf("engine: %s: %w", t.Name, err)
			}
			if !done {
				skipped.Add(1)
				return nil
			}

			report.Outputs[i] = out
			n := processed.Add(1)
			log.Info().Str("output", out).Msgf("[>] Ready: %d/%d", n, len(tasks))
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	report.Processed = int(processed.Load())
	report.Skipped = int(skipped.Load())
	report.Elapsed = time.Since(start)

	if err != nil {
		return report, err
	}

	if p.Config.Batch.ShowStats {
		fmt.Print(report.String())
	}
	return report, nil
}

// process transforms one task. It reports false when the task had nothing to
// do (an encode without a message).
func (p *BatchProject) process(t Task, out string) (bool, error) {
	if t.Mode == recipe.ModeEncode && t.Options.Message == "" {
		log.Warn().Str("task", t.Name).Msg("empty message, skipped")
		return false, nil
	}

	img, err := t.Load()
	if err != nil {
		return false, err
	}

	var result image.Image
	switch t.Mode {
	case recipe.ModeEncode:
		res, err := p.Embedder.Embed(img, t.Options)
		if err != nil {
			return false, err
		}
		result = res.Image
		log.Debug().Str("task", t.Name).Stringer("rect", res.Bounds).Uint8("alpha", res.Alpha).Msg("overlay placed")

	case recipe.ModeDecode:
		gray, err := reveal.Reveal(img, t.Intensity)
		if err != nil {
			return false, err
		}
		result = gray
		p.locate(t.Name, gray)

	default:
		return false, fmt.Errorf("unknown mode %q", t.Mode)
	}

	if err := source.SavePNG(out, result); err != nil {
		return false, err
	}
	return true, nil
}

func (p *BatchProject) locate(name string, img image.Image) {
	if p.Detector == nil {
		return
	}

	blocks, err := p.Detector.Detect(img)
	if err != nil {
		log.Warn().Err(err).Str("task", name).Msg("locate failed")
		return
	}
	for _, b := range blocks {
		log.Info().
			Str("task", name).
			Stringer("rect", b.Rect).
			Str("type", b.Type).
			Float64("confidence", b.Confidence).
			Msg("region")
	}
}

// outputPaths names each task's result, suffixing duplicates with the task's
// 1-based index.
func outputPaths(dir string, tasks []Task) []string {
	paths := make([]string, len(tasks))
	seen := make(map[string]bool, len(tasks))

	for i, t := range tasks {
		path := t.Output
		if path == "" {
			path = filepath.Join(dir, fmt.Sprintf("%s_%s.png", t.Name, suffix(t.Mode)))
		}
		if seen[path] {
			ext := filepath.Ext(path)
			path = fmt.Sprintf("%s_%d%s", path[:len(path)-len(ext)], t.Index+1, ext)
		}
		seen[path] = true
		paths[i] = path
	}

	return paths
}

func suffix(mode string) string {
	if mode == recipe.ModeDecode {
		return "revealed"
	}
	return "encoded"
}

// String renders the performance report.
func (r *Report) String() string {
	rate := 0.0
	if r.Elapsed > 0 {
		rate = float64(r.Processed) / r.Elapsed.Seconds()
	}

	memLine := "Host memory: unavailable\n"
	if used, pct, err := system.MemoryInUse(); err == nil {
		memLine = fmt.Sprintf("Host memory: %d MiB (%.1f%%)\n", used>>20, pct)
	}

	return fmt.Sprintf(
		"--- [BATCH REPORT] ---\n"+
			"Processed: %d\n"+
			"Skipped: %d\n"+
			"Total Time: %.2fs\n"+
			"Throughput: %.2f images/s\n"+
			"%s"+
			"----------------------\n",
		r.Processed, r.Skipped, r.Elapsed.Seconds(), rate, memLine,
	)
}
