package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hyperifyio/finsight/internal/pipeline"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(":0", t.TempDir(), pipeline.New(nil), zerolog.Nop())
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/", "/healthz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: got %d", path, w.Code)
		}
	}
}

func multipartUpload(t *testing.T, filename, query string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if query != "" {
		if err := mw.WriteField("query", query); err != nil {
			t.Fatalf("write query field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &body, mw.FormDataContentType()
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv := newTestServer(t)

	doc := "Acme Corp Q2 2025 Update\n\nRevenue was strong this quarter. Revenue $1,234,000\n"
	body, contentType := multipartUpload(t, "update.txt", "", []byte(doc))

	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Status        string `json:"status"`
		Query         string `json:"query"`
		FileProcessed string `json:"file_processed"`
		Verification  struct {
			IsFinancialReport bool   `json:"is_financial_report"`
			Date              string `json:"date"`
		} `json:"verification"`
		Analysis struct {
			KeyMetrics map[string]struct {
				Value any `json:"value"`
			} `json:"key_metrics"`
		} `json:"analysis"`
		Snippet string `json:"extracted_text_snippet"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "success" {
		t.Fatalf("status field: %q", resp.Status)
	}
	if resp.Query != pipeline.DefaultQuery {
		t.Fatalf("query should default: %q", resp.Query)
	}
	if resp.FileProcessed != "update.txt" {
		t.Fatalf("file_processed: %q", resp.FileProcessed)
	}
	if !resp.Verification.IsFinancialReport {
		t.Fatalf("verification: %+v", resp.Verification)
	}
	if resp.Verification.Date != "Q2 2025" {
		t.Fatalf("date: %q", resp.Verification.Date)
	}
	if v := resp.Analysis.KeyMetrics["Revenue"].Value; v != 1234000.0 {
		t.Fatalf("revenue: %v", v)
	}
	if resp.Snippet == "" {
		t.Fatalf("snippet missing")
	}
}

func TestAnalyzeEndpoint_CleansUpUpload(t *testing.T) {
	uploads := t.TempDir()
	srv := New(":0", uploads, pipeline.New(nil), zerolog.Nop())

	body, contentType := multipartUpload(t, "doc.txt", "q", []byte("quarterly earnings\n"))
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	entries, err := os.ReadDir(uploads)
	if err != nil {
		t.Fatalf("read uploads dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("upload not cleaned up: %v", entries)
	}
}

func TestAnalyzeEndpoint_MissingFileField(t *testing.T) {
	srv := newTestServer(t)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("query", "only a query")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d", w.Code)
	}
}
