package system

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// ImageExtensions lists the file types the image source reads.
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".webp"}

// FindLatestFile returns the most recently modified file in dir whose
// extension matches one of exts (case-insensitive).
func FindLatestFile(dir string, exts ...string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, e := range entries {
		if e.IsDir() || !HasExtension(e.Name(), exts...) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if latestFile == "" || info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, e.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no %s files found in %s", strings.Join(exts, "/"), dir)
	}
	return latestFile, nil
}

// FindLatestImage returns the newest image in path, or in path's directory
// when path is a file.
func FindLatestImage(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	dir := path
	if !fi.IsDir() {
		dir = filepath.Dir(path)
	}
	return FindLatestFile(dir, ImageExtensions...)
}

// HasExtension reports whether name ends in one of exts, ignoring case.
func HasExtension(name string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// RecommendedWorkers sizes a batch worker pool: one worker per logical CPU,
// reduced until the in-flight buffers for images of the given pixel count fit
// in half of the available memory. Never less than one.
func RecommendedWorkers(pixelsPerImage int) int {
	workers, err := cpu.Counts(true)
	if err != nil || workers <= 0 {
		workers = runtime.NumCPU()
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		log.Debug().Err(err).Msg("system: memory stats unavailable")
		return max(workers, 1)
	}

	// Source, flattened copy, overlay layer and encode buffer, 4 bytes each.
	perWorker := uint64(pixelsPerImage) * 4 * 4
	if perWorker > 0 {
		budget := vm.Available / 2
		if fit := int(budget / perWorker); fit < workers {
			workers = fit
		}
	}

	return max(workers, 1)
}

// MemoryInUse reports used host memory in bytes and as a percentage.
func MemoryInUse() (uint64, float64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, 0, fmt.Errorf("system: memory stats: %w", err)
	}
	return vm.Used, vm.UsedPercent, nil
}
