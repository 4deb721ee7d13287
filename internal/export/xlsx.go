// Package export renders batch verification outcomes as an XLSX workbook for
// human reviewers.
package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/thabo-maseko/regverify/internal/document"
	"github.com/thabo-maseko/regverify/internal/verify"
)

// BatchSummaryXLSX returns a workbook with one row per verified document and
// a trailing roll-up row.
func BatchSummaryXLSX(results []document.RegistrationVerificationResult) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Verification"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if defIndex, _ := f.GetSheetIndex("Sheet1"); defIndex != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"Document Type",
		"Success",
		"Overall Confidence",
		"All Fields Match",
		"OCR Method",
		"Company Name",
		"Mismatched Fields",
		"Suggested Corrections",
		"Warnings",
		"Processing Time (ms)",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range results {
		var mismatched []string
		for _, fr := range r.FieldResults {
			if !fr.Match {
				mismatched = append(mismatched, fr.Field)
			}
		}
		var corrections []string
		for _, c := range r.AutoCorrections {
			corrections = append(corrections, fmt.Sprintf("%s=%s", c.Field, document.ValueString(c.Value)))
		}

		values := []any{
			string(r.DocumentType),
			r.Success,
			r.OverallConfidence,
			r.AllFieldsMatch,
			r.OCRMethod,
			r.ExtractedData.CompanyName,
			strings.Join(mismatched, ", "),
			strings.Join(corrections, ", "),
			strings.Join(r.Warnings, "; "),
			r.ProcessingTimeMs,
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		row++
	}

	sum := verify.Summarize(results)
	totals := []any{
		"TOTAL",
		sum.AllSuccess,
		"",
		sum.AllFieldsMatch,
		"",
		"",
		"",
		fmt.Sprintf("%d combined", len(sum.AutoCorrections)),
		"",
		sum.TotalProcessingTimeMs,
	}
	for i, v := range totals {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
