// Package docs extracts text from PDF documents page by page. Pages with a usable
// text layer are read natively; the others are rasterized and recognized with OCR.
package docs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// ErrNoText means no page produced any text
var ErrNoText = errors.New("document has no recognizable text")

// Page extraction methods
const (
	MethodNative = "native"
	MethodOCR    = "ocr"
	MethodEmpty  = "empty"
)

// NativeReader returns the text layer of every page, in order
type NativeReader interface {
	PageTexts(data []byte) ([]string, error)
}

// Rasterizer renders a single 1-based page of a PDF file into an image file
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath string, page, dpi int, outDir string) (string, error)
}

// Recognizer runs OCR on an image with the given page segmentation mode
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string, psm int) (string, error)
}

// Options tune the native-vs-OCR decision
type Options struct {
	// Pages with fewer native characters are sent to OCR
	MinNativeChars int
	// OCR output shorter than this triggers the next attempt
	MinOCRChars int
	DPI         int
	UpscaledDPI int
	PSMs        []int
}

// DefaultOptions returns the tuning used in production
func DefaultOptions() Options {
	return Options{
		MinNativeChars: 30,
		MinOCRChars:    20,
		DPI:            300,
		UpscaledDPI:    450,
		PSMs:           []int{6, 4},
	}
}

// PageText is the outcome for one page
type PageText struct {
	Number int
	Text   string
	Method string
}

// Result is the extracted document
type Result struct {
	Pages []PageText
}

// Text joins non-empty pages separated by a blank line
func (r Result) Text() string {
	parts := make([]string, 0, len(r.Pages))
	for _, p := range r.Pages {
		if p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Count returns the number of pages extracted with the method
func (r Result) Count(method string) int {
	n := 0
	for _, p := range r.Pages {
		if p.Method == method {
			n++
		}
	}
	return n
}

// Extractor turns a PDF into text
type Extractor interface {
	Extract(ctx context.Context, data []byte) (Result, error)
}

// Pipeline is the default Extractor. Without a Rasterizer or Recognizer it reads native text only.
type Pipeline struct {
	native     NativeReader
	rasterizer Rasterizer
	recognizer Recognizer
	opts       Options
	logger     *zap.Logger
}

// NewPipeline creates an extraction pipeline
func NewPipeline(native NativeReader, rasterizer Rasterizer, recognizer Recognizer, opts Options, logger *zap.Logger) *Pipeline {
	if native == nil {
		native = PDFReader{}
	}
	if len(opts.PSMs) == 0 {
		opts.PSMs = DefaultOptions().PSMs
	}
	return &Pipeline{
		native:     native,
		rasterizer: rasterizer,
		recognizer: recognizer,
		opts:       opts,
		logger:     logger,
	}
}

func (p *Pipeline) ocrEnabled() bool {
	return p.rasterizer != nil && p.recognizer != nil
}

// Extract reads every page, falling back to OCR where the text layer is too thin
func (p *Pipeline) Extract(ctx context.Context, data []byte) (Result, error) {
	texts, err := p.native.PageTexts(data)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read PDF: %w", err)
	}
	if len(texts) == 0 {
		return Result{}, fmt.Errorf("PDF has no pages")
	}

	var workDir, pdfPath string
	defer func() {
		if workDir != "" {
			os.RemoveAll(workDir)
		}
	}()

	result := Result{Pages: make([]PageText, 0, len(texts))}
	for i, native := range texts {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		page := PageText{Number: i + 1, Text: clean(native), Method: MethodNative}
		if runeCount(page.Text) < p.opts.MinNativeChars && p.ocrEnabled() {
			if workDir == "" {
				workDir, pdfPath, err = writeTemp(data)
				if err != nil {
					return Result{}, err
				}
			}
			ocr := p.ocrPage(ctx, pdfPath, page.Number, workDir)
			if runeCount(ocr) > runeCount(page.Text) {
				page.Text, page.Method = ocr, MethodOCR
			}
		}
		if page.Text == "" {
			page.Method = MethodEmpty
		}
		result.Pages = append(result.Pages, page)
	}

	if result.Count(MethodEmpty) == len(result.Pages) {
		return result, ErrNoText
	}
	return result, nil
}

// ocrPage tries every psm at the base resolution, then again upscaled, keeping the longest text
func (p *Pipeline) ocrPage(ctx context.Context, pdfPath string, page int, workDir string) string {
	best := ""
	for _, dpi := range []int{p.opts.DPI, p.opts.UpscaledDPI} {
		if dpi <= 0 {
			continue
		}
		image, err := p.rasterizer.Rasterize(ctx, pdfPath, page, dpi, workDir)
		if err != nil {
			p.logger.Warn("Failed to rasterize page", zap.Int("page", page), zap.Int("dpi", dpi), zap.Error(err))
			continue
		}
		for _, psm := range p.opts.PSMs {
			text, err := p.recognizer.Recognize(ctx, image, psm)
			if err != nil {
				p.logger.Warn("OCR failed", zap.Int("page", page), zap.Int("psm", psm), zap.Error(err))
				continue
			}
			text = clean(text)
			if runeCount(text) > runeCount(best) {
				best = text
			}
			if runeCount(best) >= p.opts.MinOCRChars {
				return best
			}
		}
		if ctx.Err() != nil {
			break
		}
	}
	return best
}

func writeTemp(data []byte) (string, string, error) {
	dir, err := os.MkdirTemp("", "pdf-extract-")
	if err != nil {
		return "", "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	path := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		os.RemoveAll(dir)
		return "", "", fmt.Errorf("failed to write temp file: %w", err)
	}
	return dir, path, nil
}

// clean normalizes line endings and drops blank lines and trailing spaces
func clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\f\v")
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func runeCount(s string) int {
	return utf8.RuneCountInString(strings.Join(strings.Fields(s), ""))
}
