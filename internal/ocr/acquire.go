package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/thabo-maseko/regverify/internal/common"
)

// Acquisition method names, carried through to the final result's ocrMethod.
const (
	MethodPDFParse  = "pdf-parse"
	MethodTesseract = "tesseract"
	MethodAI        = "ai"
	MethodNone      = "none"
)

// pdfTextThreshold separates PDFs with a real text layer from PDF-wrapped
// scans that yield little or no embedded text.
const pdfTextThreshold = 100

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	TessdataDir   string

	Timeout time.Duration // per-engine-call bound, default 60s
}

// Acquisition is plain text plus a crude per-source confidence estimate.
type Acquisition struct {
	Text       string
	Confidence float64
	Method     string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Extractor{cfg: cfg, runner: execRunner{log: logger}, logger: logger}
}

var imageExtByMIME = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/tiff": "tif",
	"image/bmp":  "bmp",
	"image/webp": "webp",
}

// Acquire picks a strategy based on MIME type. Engine failures are absorbed
// into an empty, zero-confidence acquisition; only an unsupported MIME type
// is an error. Temporary files are removed on all exit paths.
func (e *Extractor) Acquire(ctx context.Context, buf []byte, mimeType string) (Acquisition, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}

	switch {
	case mt == "application/pdf":
		return e.acquirePDF(ctx, buf), nil
	default:
		if ext, ok := imageExtByMIME[mt]; ok {
			return e.acquireImage(ctx, buf, ext), nil
		}
		e.logger.Error("unsupported mime type for acquisition", "mime_type", mimeType)
		return Acquisition{Method: MethodNone}, fmt.Errorf("%w: %q", common.ErrUnsupportedMediaType, mimeType)
	}
}

func (e *Extractor) acquirePDF(ctx context.Context, buf []byte) Acquisition {
	path, cleanup, err := writeTemp(buf, "pdf")
	if err != nil {
		e.logger.Warn("pdf acquisition degraded", "error", err)
		return Acquisition{Method: MethodPDFParse}
	}
	defer cleanup()

	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		e.logger.Warn("pdftotext failed; degrading to empty text", "error", err, "stderr", truncate(string(errb), 2<<10))
		return Acquisition{Method: MethodPDFParse}
	}

	text := Normalize(string(out))
	conf := 0.6
	if len(text) > pdfTextThreshold {
		conf = 0.85
	}
	return Acquisition{Text: text, Confidence: conf, Method: MethodPDFParse}
}

func (e *Extractor) acquireImage(ctx context.Context, buf []byte, ext string) Acquisition {
	path, cleanup, err := writeTemp(buf, ext)
	if err != nil {
		e.logger.Warn("image acquisition degraded", "error", err)
		return Acquisition{Method: MethodTesseract}
	}
	defer cleanup()

	text, err := e.tesseractOCR(ctx, path)
	if err != nil {
		e.logger.Warn("tesseract failed; degrading to empty text", "error", err)
		return Acquisition{Method: MethodTesseract}
	}

	conf, err := e.tesseractTSVConfidence(ctx, path)
	if err != nil {
		e.logger.Warn("tesseract TSV confidence unavailable", "error", err)
		conf = 0
	}
	return Acquisition{Text: Normalize(text), Confidence: conf, Method: MethodTesseract}
}

func (e *Extractor) tesseractOCR(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, truncate(string(errb), 2<<10))
	}
	return string(out), nil
}

// tesseractTSVConfidence runs tesseract in TSV mode and returns mean word conf in 0..1.
func (e *Extractor) tesseractTSVConfidence(ctx context.Context, path string) (float64, error) {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	args = append(args, "tsv")

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return 0, fmt.Errorf("tesseract TSV: %w (%s)", err, truncate(string(errb), 2<<10))
	}
	lines := strings.Split(string(out), "\n")
	// columns: level page block par line word left top width height conf text
	var sum, n float64
	for i, ln := range lines {
		if i == 0 || len(ln) == 0 {
			continue // skip header
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := cols[10]
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	mean := sum / n // 0..100
	return mean / 100.0, nil
}

func writeTemp(buf []byte, ext string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "regverify-*")
	if err != nil {
		return "", nil, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }
	path := filepath.Join(dir, "doc."+ext)
	if err := os.WriteFile(path, buf, 0o600); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("write temp doc: %w", err)
	}
	return path, cleanup, nil
}
