package recipe

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ivlev/overlaysteg/internal/system"
)

// GeneratePath returns a timestamped recipe filename inside dir.
func GeneratePath(dir string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("recipe_%s.yaml", timestamp))
}

// FindLatest returns the most recently modified recipe in dir.
func FindLatest(dir string) (string, error) {
	path, err := system.FindLatestFile(dir, ".yaml", ".yml")
	if err != nil {
		return "", fmt.Errorf("recipe: %w", err)
	}
	return path, nil
}
