package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/Aashish23092/expense-ocr/client"
	"github.com/Aashish23092/expense-ocr/dto"
)

// PDFTextConfidence is reported for text read from a PDF text layer.
const PDFTextConfidence = 90.0

type ImageRecognizer interface {
	RecognizeImage(imagePath, language string, progress client.ProgressFunc) (*dto.Recognition, error)
}

type ImagePreprocessor interface {
	PreprocessBytes(data []byte, opts client.PreprocessOptions) (image.Image, error)
	Preprocess(img image.Image, opts client.PreprocessOptions) image.Image
}

type TransactionParser interface {
	ParseTransactions(text string) []dto.ExtractedTransaction
}

// ReceiptService turns uploaded receipts into transaction candidates.
type ReceiptService struct {
	ocr          ImageRecognizer
	preprocessor ImagePreprocessor
	pdfProcessor PDFProcessor
	parser       TransactionParser
	language     string
}

func NewReceiptService(
	ocr ImageRecognizer,
	preprocessor ImagePreprocessor,
	pdfProcessor PDFProcessor,
	parser TransactionParser,
	language string,
) *ReceiptService {
	if language == "" {
		language = "eng"
	}
	return &ReceiptService{
		ocr:          ocr,
		preprocessor: preprocessor,
		pdfProcessor: pdfProcessor,
		parser:       parser,
		language:     language,
	}
}

// ProcessDocument recognizes the text of an image or PDF and parses it into
// transaction candidates. Zero candidates is a valid result.
func (s *ReceiptService) ProcessDocument(ctx context.Context, data []byte, docType dto.DocumentType) (*dto.DocumentResult, error) {
	logger := log.FromContext(ctx).With("doc_type", docType, "bytes", len(data))

	var (
		rec *dto.Recognition
		err error
	)
	switch docType {
	case dto.DocTypeImage:
		rec, err = s.recognizeImage(logger, data)
	case dto.DocTypePDF:
		rec, err = s.recognizePDF(logger, data)
	default:
		return nil, fmt.Errorf("%w: %q", dto.ErrUnsupportedDocumentType, docType)
	}
	if err != nil {
		logger.Error("document recognition failed", "error", err)
		return nil, err
	}

	text := strings.TrimSpace(rec.Text)
	transactions := s.parser.ParseTransactions(text)

	logger.Info("document processed",
		"text_length", len(text),
		"confidence", rec.Confidence,
		"transactions", len(transactions))

	return &dto.DocumentResult{
		ExtractedText:    text,
		Confidence:       rec.Confidence,
		Transactions:     transactions,
		TransactionCount: len(transactions),
	}, nil
}

func (s *ReceiptService) recognizeImage(logger *log.Logger, data []byte) (*dto.Recognition, error) {
	img, err := s.preprocessor.PreprocessBytes(data, client.DefaultPreprocessOptions)
	if err != nil {
		logger.Warn("image preprocessing failed, using original image", "error", err)
		return s.recognizeScratch(logger, func() (*scratchFile, error) { return newScratchBytes(data) })
	}
	return s.recognizeScratch(logger, func() (*scratchFile, error) {
		scratch, err := newScratchImage(img)
		if err != nil {
			logger.Warn("could not stage preprocessed image, using original image", "error", err)
			return newScratchBytes(data)
		}
		return scratch, nil
	})
}

// recognizeScratch stages an image on disk, OCRs it and always removes the
// staged file.
func (s *ReceiptService) recognizeScratch(logger *log.Logger, stage func() (*scratchFile, error)) (*dto.Recognition, error) {
	scratch, err := stage()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dto.ErrOcrProcessingFailed, err)
	}
	defer scratch.Release(logger)

	rec, err := s.ocr.RecognizeImage(scratch.path, s.language, func(status string, progress float64) {
		logger.Debug("OCR progress", "status", status, "percent", int(progress*100))
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dto.ErrOcrProcessingFailed, err)
	}
	return rec, nil
}

// recognizePDF reads the text layer. Scanned PDFs without one have their page
// images OCR'd instead.
func (s *ReceiptService) recognizePDF(logger *log.Logger, data []byte) (*dto.Recognition, error) {
	text, err := s.pdfProcessor.ExtractText(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dto.ErrPdfProcessingFailed, err)
	}
	if strings.TrimSpace(text) != "" {
		return &dto.Recognition{Text: text, Confidence: PDFTextConfidence}, nil
	}

	logger.Info("PDF has no text layer, attempting image-based OCR")
	images, err := s.pdfProcessor.ExtractImages(data)
	if err != nil || len(images) == 0 {
		logger.Warn("no page images found in PDF", "error", err)
		return &dto.Recognition{Confidence: PDFTextConfidence}, nil
	}

	var (
		combined  strings.Builder
		totalConf float64
		pages     int
		lastErr   error
	)
	for idx, page := range images {
		processed := s.preprocessor.Preprocess(page, client.DefaultPreprocessOptions)
		rec, err := s.recognizeScratch(logger, func() (*scratchFile, error) { return newScratchImage(processed) })
		if err != nil {
			logger.Warn("OCR failed for PDF page", "page", idx+1, "error", err)
			lastErr = err
			continue
		}
		combined.WriteString(rec.Text)
		combined.WriteString("\n")
		totalConf += rec.Confidence
		pages++
	}

	if pages == 0 {
		return nil, fmt.Errorf("%w: %w", dto.ErrPdfProcessingFailed, lastErr)
	}
	return &dto.Recognition{Text: combined.String(), Confidence: totalConf / float64(pages)}, nil
}

// scratchFile is a temporary image handed to the OCR engine.
type scratchFile struct {
	path string
}

func newScratchImage(img image.Image) (*scratchFile, error) {
	path, err := reserveTempFile("receipt-*.png")
	if err != nil {
		return nil, err
	}
	if err := imaging.Save(img, path); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &scratchFile{path: path}, nil
}

func newScratchBytes(data []byte) (*scratchFile, error) {
	path, err := reserveTempFile("receipt-*")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write image: %w", err)
	}
	return &scratchFile{path: path}, nil
}

func reserveTempFile(pattern string) (string, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	return name, nil
}

// Release deletes the file. Failures are logged and otherwise ignored.
func (f *scratchFile) Release(logger *log.Logger) {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("failed to remove temp image", "path", f.path, "error", err)
	}
}
