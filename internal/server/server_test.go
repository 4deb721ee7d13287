package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thabo-maseko/regverify/internal/document"
	"github.com/thabo-maseko/regverify/internal/verify"
)

type fakeVerifier struct {
	lastMIME     string
	lastDocType  document.Type
	lastExpected document.ExpectedCompanyData
	result       document.RegistrationVerificationResult
}

func (f *fakeVerifier) Verify(_ context.Context, _ []byte, mimeType string, docType document.Type, expected document.ExpectedCompanyData) document.RegistrationVerificationResult {
	f.lastMIME = mimeType
	f.lastDocType = docType
	f.lastExpected = expected
	res := f.result
	res.DocumentType = docType
	return res
}

func (f *fakeVerifier) VerifyBatch(ctx context.Context, items []verify.BatchItem, expected document.ExpectedCompanyData) []document.RegistrationVerificationResult {
	out := make([]document.RegistrationVerificationResult, len(items))
	for i, item := range items {
		out[i] = f.Verify(ctx, item.Buffer, item.MIMEType, item.DocumentType, expected)
	}
	return out
}

type formFile struct {
	field, name, contentType string
	body                     []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...formFile) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.name+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.body)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func doRequest(t *testing.T, fv *fakeVerifier, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	New(fv, nil).Routes().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	New(&fakeVerifier{}, nil).Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestVerifyEndpoint(t *testing.T) {
	fv := &fakeVerifier{result: document.RegistrationVerificationResult{
		Success:           true,
		AllFieldsMatch:    true,
		OverallConfidence: 0.96,
		OCRMethod:         "pdf-parse",
	}}

	body, ct := multipartBody(t,
		map[string]string{
			"documentType": "vat",
			"expected":     `{"vatNumber": "4123456789", "companyName": "Acme"}`,
		},
		formFile{field: "file", name: "cert.pdf", contentType: "application/pdf", body: []byte("%PDF-1.4")},
	)
	rec := doRequest(t, fv, http.MethodPost, "/v1/verify", body, ct)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", fv.lastMIME)
	assert.Equal(t, document.TypeVAT, fv.lastDocType)
	assert.Equal(t, "4123456789", fv.lastExpected.VATNumber)

	var resp struct {
		Success           bool    `json:"success"`
		OverallConfidence float64 `json:"overallConfidence"`
		Report            string  `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 0.96, resp.OverallConfidence)
	assert.NotEmpty(t, resp.Report)
}

func TestVerifyEndpointNoExpectedFields(t *testing.T) {
	fv := &fakeVerifier{result: document.RegistrationVerificationResult{Success: true}}

	body, ct := multipartBody(t,
		map[string]string{"documentType": "bee"},
		formFile{field: "file", name: "cert.png", contentType: "image/png", body: []byte{0x89}},
	)
	rec := doRequest(t, fv, http.MethodPost, "/v1/verify", body, ct)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, document.ExpectedCompanyData{}, fv.lastExpected)
}

func TestVerifyEndpointBadDocumentType(t *testing.T) {
	body, ct := multipartBody(t,
		map[string]string{"documentType": "passport"},
		formFile{field: "file", name: "x.pdf", contentType: "application/pdf", body: []byte("%PDF")},
	)
	rec := doRequest(t, &fakeVerifier{}, http.MethodPost, "/v1/verify", body, ct)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestVerifyEndpointInvalidExpectedJSON(t *testing.T) {
	body, ct := multipartBody(t,
		map[string]string{"documentType": "vat", "expected": "{not json"},
		formFile{field: "file", name: "x.pdf", contentType: "application/pdf", body: []byte("%PDF")},
	)
	rec := doRequest(t, &fakeVerifier{}, http.MethodPost, "/v1/verify", body, ct)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyEndpointExpectedBEELevelOutOfRange(t *testing.T) {
	body, ct := multipartBody(t,
		map[string]string{"documentType": "bee", "expected": `{"beeLevel": 12}`},
		formFile{field: "file", name: "x.pdf", contentType: "application/pdf", body: []byte("%PDF")},
	)
	rec := doRequest(t, &fakeVerifier{}, http.MethodPost, "/v1/verify", body, ct)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "BEELevel")
}

func TestVerifyEndpointMissingFile(t *testing.T) {
	body, ct := multipartBody(t, map[string]string{"documentType": "vat"})
	rec := doRequest(t, &fakeVerifier{}, http.MethodPost, "/v1/verify", body, ct)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyBatchEndpoint(t *testing.T) {
	fv := &fakeVerifier{result: document.RegistrationVerificationResult{Success: true, AllFieldsMatch: true}}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("expected", `{"companyName": "Acme"}`))
	// one documentType value per file, in file order
	require.NoError(t, w.WriteField("documentType", "vat"))
	require.NoError(t, w.WriteField("documentType", "bee"))
	for _, name := range []string{"vat.pdf", "bee.pdf"} {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="files"; filename="`+name+`"`)
		h.Set("Content-Type", "application/pdf")
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	rec := doRequest(t, fv, http.MethodPost, "/v1/verify/batch", &buf, w.FormDataContentType())

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Results []struct {
			DocumentType string `json:"documentType"`
			Success      bool   `json:"success"`
		} `json:"results"`
		Summary struct {
			AllSuccess     bool `json:"allSuccess"`
			AllFieldsMatch bool `json:"allFieldsMatch"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "vat", resp.Results[0].DocumentType)
	assert.Equal(t, "bee", resp.Results[1].DocumentType)
	assert.True(t, resp.Summary.AllSuccess)
	assert.True(t, resp.Summary.AllFieldsMatch)
}

func TestVerifyBatchEndpointTypeCountMismatch(t *testing.T) {
	body, ct := multipartBody(t,
		map[string]string{"documentType": "vat"},
		formFile{field: "files", name: "a.pdf", contentType: "application/pdf", body: []byte("%PDF")},
		formFile{field: "files", name: "b.pdf", contentType: "application/pdf", body: []byte("%PDF")},
	)
	rec := doRequest(t, &fakeVerifier{}, http.MethodPost, "/v1/verify/batch", body, ct)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "documentType")
}

func TestVerifyBatchEndpointNoFiles(t *testing.T) {
	body, ct := multipartBody(t, map[string]string{})
	rec := doRequest(t, &fakeVerifier{}, http.MethodPost, "/v1/verify/batch", body, ct)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "at least one file")
}
