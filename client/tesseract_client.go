package client

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/otiai10/gosseract/v2"

	"github.com/Aashish23092/expense-ocr/dto"
)

// ProgressFunc receives recognition progress between 0 and 1.
type ProgressFunc func(status string, progress float64)

type TesseractClient struct {
	dataPath string
}

func NewTesseractClient(dataPath string) *TesseractClient {
	return &TesseractClient{
		dataPath: dataPath,
	}
}

// RecognizeImage runs Tesseract on the image at imagePath and returns the
// text with the mean word confidence (0-100).
func (tc *TesseractClient) RecognizeImage(imagePath, language string, progress ProgressFunc) (*dto.Recognition, error) {
	report := func(status string, p float64) {
		if progress != nil {
			progress(status, p)
		}
	}

	client := gosseract.NewClient()
	defer client.Close()

	if tc.dataPath != "" {
		client.SetTessdataPrefix(tc.dataPath)
	}
	if err := client.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImage(imagePath); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	report("recognizing text", 0)
	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}
	report("recognizing text", 1)

	// Confidence comes from word boxes; without them the text is still usable.
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		log.Warn("bounding boxes unavailable, confidence set to 0", "error", err)
		return &dto.Recognition{Text: text}, nil
	}

	var totalConf float64
	for _, box := range boxes {
		totalConf += box.Confidence
	}
	avgConf := 0.0
	if len(boxes) > 0 {
		avgConf = totalConf / float64(len(boxes))
	}

	return &dto.Recognition{Text: text, Confidence: avgConf}, nil
}

// Close performs cleanup
func (tc *TesseractClient) Close() {
	log.Info("Tesseract client closed")
}
