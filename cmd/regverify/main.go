package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/thabo-maseko/regverify/internal/common"
	"github.com/thabo-maseko/regverify/internal/document"
	"github.com/thabo-maseko/regverify/internal/export"
	"github.com/thabo-maseko/regverify/internal/metrics"
	"github.com/thabo-maseko/regverify/internal/ocr"
	"github.com/thabo-maseko/regverify/internal/provider"
	"github.com/thabo-maseko/regverify/internal/verify"
)

var mimeByExt = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".bmp":  "image/bmp",
	".webp": "image/webp",
}

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		docTypeStr = flag.String("type", "", "document type: vat | registration | bee (required)")
		out        = flag.String("out", "", "optional XLSX summary output path")

		vatNumber  = flag.String("vat", "", "expected VAT number")
		regNumber  = flag.String("reg", "", "expected registration number")
		name       = flag.String("name", "", "expected company name")
		street     = flag.String("street", "", "expected street address")
		city       = flag.String("city", "", "expected city")
		province   = flag.String("province", "", "expected province")
		postalCode = flag.String("postal", "", "expected postal code")
		beeLevel   = flag.Int("bee-level", 0, "expected B-BBEE level (1-8)")
	)
	flag.Parse()

	if *docTypeStr == "" || flag.NArg() == 0 {
		printError("Usage: regverify --type vat|registration|bee [expected flags] <file>...\n")
		os.Exit(1)
	}
	docType, err := document.ParseType(*docTypeStr)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	metrics.Register()

	expected := document.ExpectedCompanyData{
		VATNumber:          *vatNumber,
		RegistrationNumber: *regNumber,
		CompanyName:        *name,
		StreetAddress:      *street,
		City:               *city,
		ProvinceState:      *province,
		PostalCode:         *postalCode,
		BEELevel:           *beeLevel,
	}

	extractor := ocr.NewExtractor(ocr.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		Timeout:       cfg.OCR.Timeout,
	}, logger)

	providers := []provider.Provider{
		provider.NewOpenAI(provider.OpenAIConfig{
			APIKey:  cfg.Providers.OpenAIAPIKey,
			BaseURL: cfg.Providers.OpenAIBaseURL,
			Model:   cfg.Providers.OpenAIModel,
			Timeout: cfg.Providers.Timeout,
		}, logger),
		provider.NewAnthropic(provider.AnthropicConfig{
			APIKey:  cfg.Providers.AnthropicAPIKey,
			BaseURL: cfg.Providers.AnthropicURL,
			Model:   cfg.Providers.AnthropicModel,
			Timeout: cfg.Providers.Timeout,
		}, logger),
	}

	svc := verify.NewService(extractor, providers, verify.Config{
		BatchConcurrency: cfg.Verify.BatchConcurrency,
	}, logger)

	items := make([]verify.BatchItem, 0, flag.NArg())
	for _, path := range flag.Args() {
		buf, err := os.ReadFile(path)
		if err != nil {
			printError("Error: read %s: %v\n", path, err)
			os.Exit(1)
		}
		mimeType, ok := mimeByExt[strings.ToLower(filepath.Ext(path))]
		if !ok {
			printError("Error: unsupported file extension: %s\n", path)
			os.Exit(1)
		}
		items = append(items, verify.BatchItem{Buffer: buf, MIMEType: mimeType, DocumentType: docType})
	}

	results := svc.VerifyBatch(context.Background(), items, expected)

	for i, res := range results {
		fmt.Printf("== %s\n", flag.Arg(i))
		fmt.Printf("success=%t confidence=%.2f all_match=%t method=%s\n",
			res.Success, res.OverallConfidence, res.AllFieldsMatch, res.OCRMethod)
		fmt.Println(verify.GenerateReport(res))
		fmt.Println()
	}

	sum := verify.Summarize(results)
	fmt.Printf("Batch: all_success=%t all_match=%t corrections=%d total_ms=%d\n",
		sum.AllSuccess, sum.AllFieldsMatch, len(sum.AutoCorrections), sum.TotalProcessingTimeMs)

	if *out != "" {
		wb, err := export.BatchSummaryXLSX(results)
		if err != nil {
			printError("Error: build summary workbook: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, wb, 0o644); err != nil {
			printError("Error: write %s: %v\n", *out, err)
			os.Exit(1)
		}
		fmt.Printf("Summary written to %s\n", *out)
	}
}
