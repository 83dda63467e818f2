package docs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Poppler rasterizes pages with the pdftoppm executable
type Poppler struct {
	Binary string
}

func (p Poppler) binary() string {
	if p.Binary != "" {
		return p.Binary
	}
	return "pdftoppm"
}

func pdftoppmArgs(pdfPath string, page, dpi int, outPrefix string) []string {
	n := strconv.Itoa(page)
	return []string{"-f", n, "-l", n, "-r", strconv.Itoa(dpi), "-gray", "-png", "-singlefile", pdfPath, outPrefix}
}

// Rasterize writes the page as a grayscale PNG into outDir
func (p Poppler) Rasterize(ctx context.Context, pdfPath string, page, dpi int, outDir string) (string, error) {
	prefix := filepath.Join(outDir, "page-"+uuid.NewString())
	if err := run(ctx, p.binary(), pdftoppmArgs(pdfPath, page, dpi, prefix), nil); err != nil {
		return "", err
	}
	return prefix + ".png", nil
}

// Tesseract recognizes images with the tesseract executable
type Tesseract struct {
	Binary   string
	Language string
}

func (t Tesseract) binary() string {
	if t.Binary != "" {
		return t.Binary
	}
	return "tesseract"
}

func tesseractArgs(imagePath, language string, psm int) []string {
	if language == "" {
		language = "rus+eng"
	}
	return []string{imagePath, "stdout", "-l", language, "--psm", strconv.Itoa(psm)}
}

// Recognize returns the text tesseract prints to stdout
func (t Tesseract) Recognize(ctx context.Context, imagePath string, psm int) (string, error) {
	var out bytes.Buffer
	if err := run(ctx, t.binary(), tesseractArgs(imagePath, t.Language, psm), &out); err != nil {
		return "", err
	}
	return out.String(), nil
}

// Available reports whether both OCR executables are on PATH
func Available(p Poppler, t Tesseract) bool {
	if _, err := exec.LookPath(p.binary()); err != nil {
		return false
	}
	_, err := exec.LookPath(t.binary())
	return err == nil
}

func run(ctx context.Context, name string, args []string, stdout *bytes.Buffer) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	if stdout != nil {
		cmd.Stdout = stdout
	}
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
