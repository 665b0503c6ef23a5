package overlay

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// DefaultFontName is tried first when Options.FontName is empty.
const DefaultFontName = "arial.ttf"

// FontLoader resolves font names to parsed fonts and caches the result,
// including misses, so repeated calls do not rescan the font directories.
type FontLoader struct {
	Dirs []string

	mu       sync.Mutex
	fonts    map[string]*opentype.Font
	fallback *opentype.Font
}

// NewFontLoader returns a loader searching the platform font directories.
func NewFontLoader() *FontLoader {
	return &FontLoader{Dirs: systemFontDirs()}
}

func systemFontDirs() []string {
	home, _ := os.UserHomeDir()

	switch runtime.GOOS {
	case "windows":
		windir := os.Getenv("WINDIR")
		if windir == "" {
			windir = `C:\Windows`
		}
		return []string{filepath.Join(windir, "Fonts")}
	case "darwin":
		return []string{
			"/System/Library/Fonts",
			"/Library/Fonts",
			filepath.Join(home, "Library", "Fonts"),
		}
	default:
		return []string{
			"/usr/share/fonts",
			"/usr/local/share/fonts",
			filepath.Join(home, ".fonts"),
			filepath.Join(home, ".local", "share", "fonts"),
		}
	}
}

// Face returns a face for name at size pixels. Any failure to find or parse
// the named font falls back to the built-in Go Regular font.
func (l *FontLoader) Face(name string, size int) (font.Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("font size must be positive, got %d", size)
	}

	f, err := l.lookup(name)
	if err != nil {
		log.Debug().Err(err).Str("font", name).Msg("overlay: using built-in font")
		if f, err = l.builtin(); err != nil {
			return nil, err
		}
	}

	// At 72 DPI one point is one pixel.
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func (l *FontLoader) lookup(name string) (*opentype.Font, error) {
	if name == "" {
		name = DefaultFontName
	}
	key := strings.ToLower(name)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fonts == nil {
		l.fonts = make(map[string]*opentype.Font)
	}
	if f, ok := l.fonts[key]; ok {
		if f == nil {
			return nil, fmt.Errorf("font %q not found", name)
		}
		return f, nil
	}

	f, err := l.load(name)
	l.fonts[key] = f
	return f, err
}

func (l *FontLoader) load(name string) (*opentype.Font, error) {
	path, err := l.resolve(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return f, nil
}

// resolve accepts a direct path first, then walks the search dirs looking for
// a file whose base name matches case-insensitively.
func (l *FontLoader) resolve(name string) (string, error) {
	if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
		return name, nil
	}

	want := strings.ToLower(filepath.Base(name))
	var found string

	for _, dir := range l.Dirs {
		if dir == "" {
			continue
		}
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				log.Debug().Err(err).Str("path", path).Msg("overlay: skipping unreadable font dir")
				return fs.SkipDir
			}
			if !d.IsDir() && strings.ToLower(d.Name()) == want {
				found = path
				return fs.SkipAll
			}
			return nil
		})
		if err != nil {
			log.Debug().Err(err).Str("dir", dir).Msg("overlay: font search failed")
		}
		if found != "" {
			return found, nil
		}
	}

	return "", fmt.Errorf("font %q not found", name)
}

func (l *FontLoader) builtin() (*opentype.Font, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fallback != nil {
		return l.fallback, nil
	}

	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse built-in font: %w", err)
	}
	l.fallback = f
	return f, nil
}
