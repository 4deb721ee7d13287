// Package server exposes the verification pipeline over HTTP. It is a thin
// transport: all semantics live in internal/verify.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thabo-maseko/regverify/internal/document"
	"github.com/thabo-maseko/regverify/internal/verify"
)

// maxUploadBytes bounds one multipart request body.
const maxUploadBytes = 32 << 20

// Verifier is the pipeline surface the server depends on.
type Verifier interface {
	Verify(ctx context.Context, buf []byte, mimeType string, docType document.Type, expected document.ExpectedCompanyData) document.RegistrationVerificationResult
	VerifyBatch(ctx context.Context, items []verify.BatchItem, expected document.ExpectedCompanyData) []document.RegistrationVerificationResult
}

type Server struct {
	log      *slog.Logger
	verifier Verifier
	validate *validator.Validate
}

func New(verifier Verifier, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		log:      logger,
		verifier: verifier,
		validate: validator.New(),
	}
}

// Routes builds the HTTP router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/verify", s.handleVerify)
		r.Post("/verify/batch", s.handleVerifyBatch)
	})
	return r
}

// verifyResponse embeds the pipeline result plus its rendered report, the
// shape the original onboarding endpoint returned.
type verifyResponse struct {
	document.RegistrationVerificationResult
	Report string `json:"report"`
}

type batchResponse struct {
	Results []verifyResponse    `json:"results"`
	Summary verify.BatchSummary `json:"summary"`
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("parse multipart form: %v", err))
		return
	}

	docType, err := document.ParseType(r.FormValue("documentType"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	expected, err := s.parseExpected(r.FormValue("expected"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	buf, mimeType, err := readUpload(r, "file")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := s.verifier.Verify(r.Context(), buf, mimeType, docType, expected)
	writeJSON(w, http.StatusOK, verifyResponse{
		RegistrationVerificationResult: result,
		Report:                         verify.GenerateReport(result),
	})
}

func (s *Server) handleVerifyBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("parse multipart form: %v", err))
		return
	}

	expected, err := s.parseExpected(r.FormValue("expected"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	files := r.MultipartForm.File["files"]
	types := r.MultipartForm.Value["documentType"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "at least one file is required")
		return
	}
	if len(types) != len(files) {
		writeError(w, http.StatusBadRequest, "one documentType value is required per file")
		return
	}

	items := make([]verify.BatchItem, 0, len(files))
	for i, fh := range files {
		docType, err := document.ParseType(types[i])
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("file %d: %v", i, err))
			return
		}
		buf, mimeType, err := readFileHeader(fh)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("file %d: %v", i, err))
			return
		}
		items = append(items, verify.BatchItem{Buffer: buf, MIMEType: mimeType, DocumentType: docType})
	}

	results := s.verifier.VerifyBatch(r.Context(), items, expected)
	resp := batchResponse{
		Results: make([]verifyResponse, len(results)),
		Summary: verify.Summarize(results),
	}
	for i, res := range results {
		resp.Results[i] = verifyResponse{
			RegistrationVerificationResult: res,
			Report:                         verify.GenerateReport(res),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) parseExpected(raw string) (document.ExpectedCompanyData, error) {
	var expected document.ExpectedCompanyData
	if raw == "" {
		return expected, nil
	}
	if err := json.Unmarshal([]byte(raw), &expected); err != nil {
		return expected, fmt.Errorf("decode expected company data: %w", err)
	}
	if err := s.validate.Struct(expected); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return expected, fmt.Errorf("invalid expected company data: field %s", verrs[0].Field())
		}
		return expected, fmt.Errorf("invalid expected company data: %w", err)
	}
	return expected, nil
}

func readUpload(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", fmt.Errorf("missing %q upload: %w", field, err)
	}
	defer func() { _ = file.Close() }()
	return readAll(file, header)
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, string, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open upload: %w", err)
	}
	defer func() { _ = file.Close() }()
	return readAll(file, fh)
}

func readAll(file multipart.File, fh *multipart.FileHeader) ([]byte, string, error) {
	buf, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(buf)
	}
	return buf, mimeType, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
