// Package verify implements the registration-document verification pipeline:
// acquisition, extraction cascade, field comparison, confidence fusion,
// report generation, and batch orchestration.
package verify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/thabo-maseko/regverify/internal/document"
	"github.com/thabo-maseko/regverify/internal/metrics"
	"github.com/thabo-maseko/regverify/internal/ocr"
	"github.com/thabo-maseko/regverify/internal/pattern"
	"github.com/thabo-maseko/regverify/internal/provider"
)

// minTextLength guards against feeding garbage into downstream extractors.
const minTextLength = 10

// Acquirer is the text-acquisition stage, stubbed in tests.
type Acquirer interface {
	Acquire(ctx context.Context, buf []byte, mimeType string) (ocr.Acquisition, error)
}

// Config holds pipeline behavior settings.
type Config struct {
	BatchConcurrency int // bound on concurrent batch items, default 4
}

// Service runs the full pipeline. Providers are tried in slice order; the
// deterministic pattern extractor is the always-available fallback.
type Service struct {
	log       *slog.Logger
	acquirer  Acquirer
	providers []provider.Provider
	cfg       Config
}

func NewService(acquirer Acquirer, providers []provider.Provider, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = 4
	}
	return &Service{
		log:       logger,
		acquirer:  acquirer,
		providers: providers,
		cfg:       cfg,
	}
}

// Extract runs acquisition then the extraction cascade. The returned method
// is what populated the record: "ai" for a remote provider, otherwise the
// acquisition method. Only an unsupported MIME type is an error.
func (s *Service) Extract(ctx context.Context, buf []byte, mimeType string, docType document.Type) (document.ExtractedRegistrationData, string, error) {
	acq, err := s.acquirer.Acquire(ctx, buf, mimeType)
	if err != nil {
		return document.ExtractedRegistrationData{}, ocr.MethodNone, err
	}
	metrics.OCRMethodTotal.WithLabelValues(acq.Method).Inc()

	if len(acq.Text) < minTextLength {
		s.log.Warn("verify.extract.short_text",
			"doc_type", docType,
			"text_len", len(acq.Text),
		)
		return document.ExtractedRegistrationData{RawText: acq.Text}, acq.Method, nil
	}

	for _, p := range s.providers {
		if !p.Available() {
			continue
		}
		data, perr := p.Extract(ctx, acq.Text, docType)
		if perr != nil {
			metrics.ProviderRequestsTotal.WithLabelValues(p.Name(), "error").Inc()
			s.log.Warn("verify.extract.provider_failed",
				"provider", p.Name(),
				"doc_type", docType,
				"error", perr,
			)
			// Exactly one remote attempt; fall through to pattern extraction.
			break
		}
		metrics.ProviderRequestsTotal.WithLabelValues(p.Name(), "success").Inc()
		if acq.Confidence > data.Confidence {
			data.Confidence = acq.Confidence
		}
		data.RawText = acq.Text
		return data, ocr.MethodAI, nil
	}

	return pattern.Extract(acq.Text, docType, acq.Confidence), acq.Method, nil
}

// Verify runs the full single-document pipeline. It always returns a
// well-formed result: any error or panic surfaces as success=false with the
// message in Warnings, never as a thrown error.
func (s *Service) Verify(ctx context.Context, buf []byte, mimeType string, docType document.Type, expected document.ExpectedCompanyData) (res document.RegistrationVerificationResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("verify.pipeline.panic", "doc_type", docType, "panic", r)
			res = failureResult(docType, fmt.Sprintf("verification failed: %v", r), start)
		}
		outcome := "success"
		if !res.Success {
			outcome = "failure"
		}
		metrics.VerificationsTotal.WithLabelValues(string(docType), outcome).Inc()
		metrics.VerificationDuration.WithLabelValues(string(docType)).Observe(time.Since(start).Seconds())
	}()

	extracted, method, err := s.Extract(ctx, buf, mimeType, docType)
	if err != nil {
		return failureResult(docType, err.Error(), start)
	}

	var fieldResults []document.FieldVerificationResult
	for _, pol := range document.ComparisonPolicy(docType) {
		expVal, supplied := expected.Field(pol.Field)
		if !supplied {
			continue
		}
		extVal, populated := extracted.Field(pol.Field)
		if !populated {
			extVal = nil
		}
		fieldResults = append(fieldResults, CompareField(pol.Field, expVal, extVal, pol.Match, pol.Threshold))
	}

	allMatch := allFieldsMatch(fieldResults)
	overall := fuseConfidence(extracted.Confidence, fieldResults)

	res = document.RegistrationVerificationResult{
		Success:           true,
		DocumentType:      docType,
		ExtractedData:     extracted,
		FieldResults:      fieldResults,
		OverallConfidence: overall,
		AllFieldsMatch:    allMatch,
		AutoCorrections:   autoCorrections(fieldResults, extracted),
		Warnings:          buildWarnings(extracted.Confidence, overall, allMatch),
		OCRMethod:         method,
		ProcessingTimeMs:  time.Since(start).Milliseconds(),
	}

	s.log.Info("verify.pipeline.ok",
		"doc_type", docType,
		"ocr_method", method,
		"fields_compared", len(fieldResults),
		"all_match", allMatch,
		"overall_confidence", overall,
		"elapsed_ms", res.ProcessingTimeMs,
	)
	return res
}

func failureResult(docType document.Type, message string, start time.Time) document.RegistrationVerificationResult {
	return document.RegistrationVerificationResult{
		Success:          false,
		DocumentType:     docType,
		FieldResults:     []document.FieldVerificationResult{},
		Warnings:         []string{message},
		OCRMethod:        ocr.MethodNone,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}
}
