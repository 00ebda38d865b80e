package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Aashish23092/expense-ocr/client"
	"github.com/Aashish23092/expense-ocr/config"
	"github.com/Aashish23092/expense-ocr/dto"
	"github.com/Aashish23092/expense-ocr/handler"
	"github.com/Aashish23092/expense-ocr/service"
	"github.com/Aashish23092/expense-ocr/storage"
	"github.com/Aashish23092/expense-ocr/utils/receipt"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "receipts",
	Short: "Receipt OCR expense tracker",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.LoadConfig(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		config.SetupLogging(cfg)
		return nil
	},
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract transactions from a local receipt image or PDF and print them as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return extract(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json, logfmt)")
	rootCmd.PersistentFlags().String("tessdata", "", "Tesseract tessdata directory")
	rootCmd.PersistentFlags().String("lang", "eng", "OCR language")

	serveCmd.Flags().String("port", "8080", "HTTP port")
	serveCmd.Flags().String("db", "data/receipts.db", "SQLite database path")

	rootCmd.AddCommand(serveCmd, extractCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newReceiptService builds the extraction pipeline from cfg. The returned
// func releases the OCR engine.
func newReceiptService() (*service.ReceiptService, func()) {
	tesseractClient := client.NewTesseractClient(cfg.TesseractDataPath)
	svc := service.NewReceiptService(
		tesseractClient,
		client.NewImagePreprocessor(),
		service.NewPDFProcessor(),
		receipt.NewParser(),
		cfg.OCRLanguage,
	)
	return svc, tesseractClient.Close
}

func serve(ctx context.Context) error {
	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	receipts, closeOCR := newReceiptService()
	defer closeOCR()

	transactions := service.NewTransactionService(store)
	router := handler.NewRouter(
		handler.NewReceiptHandler(receipts, transactions, cfg.MaxFileSize),
		handler.NewTransactionHandler(transactions),
		handler.NewAnalyticsHandler(service.NewAnalyticsService(store)),
		// Room for the multipart envelope around a maximum-size upload.
		cfg.MaxFileSize+(1<<20),
	)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting receipt service", "port", cfg.ServerPort, "db", cfg.DatabasePath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func extract(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	docType, ok := dto.DetectDocumentType("", filepath.Base(path))
	if !ok {
		return fmt.Errorf("%w: %s", dto.ErrUnsupportedDocumentType, filepath.Ext(path))
	}

	receipts, closeOCR := newReceiptService()
	defer closeOCR()

	result, err := receipts.ProcessDocument(ctx, data, docType)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
