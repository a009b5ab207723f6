package ragengine

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRunRAG(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/run-rag" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req RunRAGRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Query != "q" || len(req.DocIDs) != 1 {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(RAGResult{Query: req.Query, Answer: "the answer"})
	}))
	defer ts.Close()

	client := New(ts.URL)
	res, err := client.RunRAG(context.Background(), RunRAGRequest{Query: "q", DocIDs: []string{"d1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Answer != "the answer" {
		t.Errorf("answer = %q", res.Answer)
	}
}

func TestAPIErrorMapsToSentinels(t *testing.T) {
	tests := []struct {
		code     string
		status   int
		sentinel error
	}{
		{"document_not_found", http.StatusNotFound, ErrDocumentNotFound},
		{"invalid_config", http.StatusBadRequest, ErrInvalidConfig},
		{"no_chunks", http.StatusBadRequest, ErrNoChunks},
		{"generation_failed", http.StatusBadGateway, ErrGenerationFailed},
		{"provider_unavailable", http.StatusBadGateway, ErrProviderUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]string{"code": tt.code, "message": "nope"})
			}))
			defer ts.Close()

			client := New(ts.URL)
			_, err := client.RunRAG(context.Background(), RunRAGRequest{Query: "q"})
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("error %v does not match sentinel %v", err, tt.sentinel)
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.StatusCode != tt.status {
				t.Errorf("APIError not preserved: %v", err)
			}
		})
	}
}

func TestUploadDocs(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		files := r.MultipartForm.File["files"]
		out := UploadResult{Total: len(files)}
		for _, fh := range files {
			out.Uploaded = append(out.Uploaded, UploadedDoc{
				DocID: "id-" + fh.Filename, Filename: fh.Filename, Status: "processed",
			})
		}
		json.NewEncoder(w).Encode(out)
	}))
	defer ts.Close()

	client := New(ts.URL)
	res, err := client.UploadDocs(context.Background(), map[string]io.Reader{
		"a.txt": strings.NewReader("alpha"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 1 || res.Uploaded[0].DocID != "id-a.txt" {
		t.Errorf("result = %+v", res)
	}
}

func TestDeleteDoc_NoContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	if err := New(ts.URL).DeleteDoc(context.Background(), "d1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHealth_DegradedIsNotAnError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(HealthStatus{
			Status: "degraded",
			Checks: map[string]string{"llm": "error", "embedding": "ok"},
		})
	}))
	defer ts.Close()

	status, err := New(ts.URL).Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Status != "degraded" || status.Checks["llm"] != "error" {
		t.Errorf("status = %+v", status)
	}
}
