package verify

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/thabo-maseko/regverify/internal/document"
)

// BatchItem pairs one document buffer with its MIME and document type.
type BatchItem struct {
	Buffer       []byte
	MIMEType     string
	DocumentType document.Type
}

// VerifyBatch runs the pipeline over every item concurrently, bounded by
// Config.BatchConcurrency, and returns one result per item in input order.
// Items share no state; a failing item yields a success=false entry at its
// index without affecting siblings.
func (s *Service) VerifyBatch(ctx context.Context, items []BatchItem, expected document.ExpectedCompanyData) []document.RegistrationVerificationResult {
	results := make([]document.RegistrationVerificationResult, len(items))

	g := new(errgroup.Group)
	g.SetLimit(s.cfg.BatchConcurrency)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			results[i] = s.Verify(ctx, item.Buffer, item.MIMEType, item.DocumentType, expected)
			return nil
		})
	}
	// Verify never returns an error; per-item failures live in their rows.
	_ = g.Wait()
	return results
}

// BatchSummary holds batch-wide roll-ups over a result slice.
type BatchSummary struct {
	AllSuccess            bool                      `json:"allSuccess"`
	AllFieldsMatch        bool                      `json:"allFieldsMatch"`
	AutoCorrections       []document.AutoCorrection `json:"autoCorrections"`
	TotalProcessingTimeMs int64                     `json:"totalProcessingTimeMs"`
}

// Summarize aggregates results: combined auto-corrections keep the first
// occurrence per field in item order.
func Summarize(results []document.RegistrationVerificationResult) BatchSummary {
	sum := BatchSummary{AllSuccess: true, AllFieldsMatch: true}
	seen := make(map[string]bool)
	for _, r := range results {
		sum.AllSuccess = sum.AllSuccess && r.Success
		sum.AllFieldsMatch = sum.AllFieldsMatch && r.AllFieldsMatch
		sum.TotalProcessingTimeMs += r.ProcessingTimeMs
		for _, c := range r.AutoCorrections {
			if seen[c.Field] {
				continue
			}
			seen[c.Field] = true
			sum.AutoCorrections = append(sum.AutoCorrections, c)
		}
	}
	return sum
}
