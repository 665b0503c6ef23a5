package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/ivlev/overlaysteg/internal/config"
	"github.com/ivlev/overlaysteg/internal/overlay"
	"github.com/ivlev/overlaysteg/internal/reveal"
	"github.com/ivlev/overlaysteg/internal/source"
)

// DownloadName is the filename offered for encoded images.
const DownloadName = "encoded_image.png"

type uploadResponse struct {
	ID     string `json:"id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

type indexData struct {
	Embed     config.EmbedConfig
	Intensity float64
	MinFont   int
	MaxFont   int
}

func (s *Server) HandleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := s.page.Execute(w, indexData{
		Embed:     s.cfg.Embed,
		Intensity: s.cfg.Reveal.Intensity,
		MinFont:   config.MinFontSize,
		MaxFont:   config.MaxFontSize,
	})
	if err != nil {
		log.Error().Err(err).Msg("render index")
	}
}

func (s *Server) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)

	file, _, err := r.FormFile("image")
	if err != nil {
		httpError(w, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httpError(w, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}

	img, format, err := source.DecodeBytes(data)
	if err != nil {
		httpError(w, http.StatusUnsupportedMediaType, err)
		return
	}

	id, err := s.store(img, format)
	if err != nil {
		httpError(w, http.StatusInternalServerError, err)
		return
	}

	b := img.Bounds()
	log.Debug().Str("id", id).Str("format", format).Int("width", b.Dx()).Int("height", b.Dy()).Msg("upload stored")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(uploadResponse{ID: id, Width: b.Dx(), Height: b.Dy(), Format: format})
}

func (s *Server) HandleEncode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	up, err := s.lookup(q.Get("id"))
	if err != nil {
		httpError(w, http.StatusNotFound, err)
		return
	}

	message := q.Get("message")
	if message == "" {
		// Nothing to hide yet; the page shows nothing.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	opts, err := s.encodeOptions(q, message)
	if err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.embedder.Embed(up.Image, opts)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, overlay.ErrInvalidOptions) {
			status = http.StatusBadRequest
		}
		httpError(w, status, err)
		return
	}

	var out image.Image = res.Image
	download := q.Get("download") == "1"
	if !download {
		if out, err = s.preview(q, out); err != nil {
			httpError(w, http.StatusBadRequest, err)
			return
		}
	}

	if download {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", DownloadName))
	}
	writePNG(w, out)
}

func (s *Server) HandleDecode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	up, err := s.lookup(q.Get("id"))
	if err != nil {
		httpError(w, http.StatusNotFound, err)
		return
	}

	intensity, err := floatParam(q, "intensity", s.cfg.Reveal.Intensity, 0, 1)
	if err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}

	gray, err := reveal.Reveal(up.Image, intensity)
	if err != nil {
		httpError(w, http.StatusInternalServerError, err)
		return
	}

	width, err := s.previewWidth(q)
	if err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}
	writePNG(w, source.PreviewGray(gray, width))
}

func (s *Server) encodeOptions(q url.Values, message string) (overlay.Options, error) {
	opts := s.cfg.Embed.Options(message)
	var err error

	if opts.Strength, err = floatParam(q, "strength", opts.Strength, 0, 1); err != nil {
		return opts, err
	}
	if opts.HOffset, err = floatParam(q, "h_offset", opts.HOffset, -1, 1); err != nil {
		return opts, err
	}
	if opts.VOffset, err = floatParam(q, "v_offset", opts.VOffset, -1, 1); err != nil {
		return opts, err
	}
	if opts.FontSize, err = intParam(q, "font_size", opts.FontSize, config.MinFontSize, config.MaxFontSize); err != nil {
		return opts, err
	}
	if p := q.Get("pattern"); p != "" {
		opts.Pattern = p
	}

	return opts, opts.Validate()
}

// previewWidth is max_width from the query, or the configured preview width
// when it is absent.
func (s *Server) previewWidth(q url.Values) (int, error) {
	return intParam(q, "max_width", s.cfg.Server.PreviewWidth, 0, 1<<14)
}

func (s *Server) preview(q url.Values, img image.Image) (image.Image, error) {
	width, err := s.previewWidth(q)
	if err != nil {
		return nil, err
	}
	return source.Preview(img, width), nil
}

func floatParam(q url.Values, key string, def, lo, hi float64) (float64, error) {
	raw := q.Get(key)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%s %g outside [%g, %g]", key, v, lo, hi)
	}
	return v, nil
}

func intParam(q url.Values, key string, def, lo, hi int) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%s %d outside [%d, %d]", key, v, lo, hi)
	}
	return v, nil
}

func writePNG(w http.ResponseWriter, img image.Image) {
	var buf bytes.Buffer
	if err := source.EncodePNG(&buf, img); err != nil {
		httpError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func httpError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", status).Msg("request failed")
	}
	http.Error(w, err.Error(), status)
}
