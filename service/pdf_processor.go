package service

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	// Decoders for page images pdfcpu writes out.
	_ "image/jpeg"
	_ "image/png"
)

type PDFProcessor interface {
	ExtractText(pdfData []byte) (string, error)
	ExtractImages(pdfData []byte) ([]image.Image, error)
}

type pdfProcessor struct{}

func NewPDFProcessor() PDFProcessor {
	return &pdfProcessor{}
}

// ExtractText reads the text layer page by page, one line per text row.
func (p *pdfProcessor) ExtractText(pdfData []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var textBuilder strings.Builder
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			log.Warn("skipping unreadable pdf page", "page", pageIndex, "error", err)
			continue
		}
		for _, row := range rows {
			for i, word := range row.Content {
				if i > 0 {
					textBuilder.WriteString(" ")
				}
				textBuilder.WriteString(word.S)
			}
			textBuilder.WriteString("\n")
		}
	}
	return strings.TrimSpace(textBuilder.String()), nil
}

// ExtractImages returns the images embedded in the PDF, which for scanned
// receipts are the page scans.
func (p *pdfProcessor) ExtractImages(pdfData []byte) ([]image.Image, error) {
	tempDir, err := os.MkdirTemp("", "receipt-pdf-images")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	pdfPath := filepath.Join(tempDir, "document.pdf")
	if err := os.WriteFile(pdfPath, pdfData, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write pdf data: %w", err)
	}

	outDir := filepath.Join(tempDir, "images")
	if err := os.Mkdir(outDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create image dir: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractImagesFile(pdfPath, outDir, nil, conf); err != nil {
		return nil, fmt.Errorf("failed to extract images: %w", err)
	}

	files, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image dir: %w", err)
	}

	var images []image.Image
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		img, err := decodeImageFile(filepath.Join(outDir, file.Name()))
		if err != nil {
			log.Debug("skipping undecodable pdf image", "file", file.Name(), "error", err)
			continue
		}
		images = append(images, img)
	}
	return images, nil
}

func decodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}
