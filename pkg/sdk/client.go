package ragengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/HansujaB/rag-insights-engine/internal/domain"
	"github.com/HansujaB/rag-insights-engine/internal/index"
	"github.com/HansujaB/rag-insights-engine/internal/usecase/evaluation"
	"github.com/HansujaB/rag-insights-engine/internal/usecase/generation"
)

// Result type aliases so SDK callers never import internal packages.
type (
	RAGResult        = domain.RAGResult
	ExperimentResult = domain.ExperimentResult
	EvaluationScore  = domain.EvaluationScore
	RetrievalHit     = domain.RetrievalHit
	BatchResult      = evaluation.BatchResult
	EvaluatedRun     = evaluation.EvaluatedRun
	Comparison       = evaluation.Comparison
	Question         = generation.Question
	IndexStats       = index.Stats
)

// Client talks to a rag-insights-engine server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the engine at baseURL.
func New(baseURL string, opts ...Option) *Client {
	cfg := clientConfig{timeout: 5 * time.Minute}
	for _, o := range opts {
		o.apply(&cfg)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

// RunRAGRequest configures a single pipeline run. Zero-valued optional
// fields fall back to the server's configured defaults.
type RunRAGRequest struct {
	Query          string   `json:"query"`
	DocIDs         []string `json:"doc_ids"`
	ChunkSize      *int     `json:"chunk_size,omitempty"`
	OverlapPercent *int     `json:"overlap_percent,omitempty"`
	TopK           *int     `json:"top_k,omitempty"`
	Model          string   `json:"model,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty"`
	Evaluate       bool     `json:"evaluate,omitempty"`
}

// RunRAG executes one retrieval-augmented generation pass.
func (c *Client) RunRAG(ctx context.Context, req RunRAGRequest) (RAGResult, error) {
	var out RAGResult
	err := c.post(ctx, "/api/run-rag", req, &out)
	return out, err
}

// RunExperimentRequest configures a multi-chunk-size experiment.
type RunExperimentRequest struct {
	Query          string   `json:"query"`
	DocIDs         []string `json:"doc_ids"`
	ChunkSizes     []int    `json:"chunk_sizes,omitempty"`
	OverlapPercent *int     `json:"overlap_percent,omitempty"`
	TopK           *int     `json:"top_k,omitempty"`
	Model          string   `json:"model,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty"`
	Evaluate       *bool    `json:"evaluate,omitempty"`
}

// RunExperiment runs the same query at several chunk sizes and reports
// every leg plus the recommended configuration.
func (c *Client) RunExperiment(ctx context.Context, req RunExperimentRequest) (ExperimentResult, error) {
	var out ExperimentResult
	err := c.post(ctx, "/api/run-experiment", req, &out)
	return out, err
}

// EvaluateRequest asks the judge model to score one generated answer.
type EvaluateRequest struct {
	Query           string   `json:"query"`
	GeneratedAnswer string   `json:"generated_answer"`
	ExpectedAnswer  string   `json:"expected_answer,omitempty"`
	ContextChunks   []string `json:"context_chunks,omitempty"`
	EvaluatorModel  string   `json:"evaluator_model,omitempty"`
}

// Evaluate scores a single answer.
func (c *Client) Evaluate(ctx context.Context, req EvaluateRequest) (EvaluationScore, error) {
	var out EvaluationScore
	err := c.post(ctx, "/api/evaluate", req, &out)
	return out, err
}

// BatchEvaluate scores several answers independently.
func (c *Client) BatchEvaluate(ctx context.Context, reqs []EvaluateRequest) (BatchResult, error) {
	var out BatchResult
	err := c.post(ctx, "/api/batch-evaluate", map[string]any{"evaluations": reqs}, &out)
	return out, err
}

// ComparePipelines ranks evaluated pipeline runs by overall score.
func (c *Client) ComparePipelines(ctx context.Context, runs []EvaluatedRun) (Comparison, error) {
	var out Comparison
	err := c.post(ctx, "/api/compare-pipelines", map[string]any{"pipeline_results": runs}, &out)
	return out, err
}

// QuestionSet is the response of GenerateQuestions.
type QuestionSet struct {
	DocID     string     `json:"doc_id"`
	Questions []Question `json:"questions"`
	Total     int        `json:"total"`
}

// GenerateQuestions builds up to n question/answer pairs from a document.
func (c *Client) GenerateQuestions(ctx context.Context, docID string, n int, model string) (QuestionSet, error) {
	var out QuestionSet
	err := c.post(ctx, "/api/generate-questions", map[string]any{
		"doc_id":        docID,
		"num_questions": n,
		"model":         model,
	}, &out)
	return out, err
}

// UploadedDoc is one per-file outcome of an upload batch.
type UploadedDoc struct {
	DocID      string `json:"doc_id,omitempty"`
	Filename   string `json:"filename"`
	Status     string `json:"status"`
	TextLength int    `json:"text_length,omitempty"`
	Error      string `json:"error,omitempty"`
}

// UploadResult is the response of UploadDocs.
type UploadResult struct {
	Uploaded []UploadedDoc `json:"uploaded"`
	Total    int           `json:"total"`
}

// UploadDocs uploads files keyed by filename. Per-file failures are
// reported inside the result, not as an error.
func (c *Client) UploadDocs(ctx context.Context, files map[string]io.Reader) (UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, r := range files {
		fw, err := mw.CreateFormFile("files", name)
		if err != nil {
			return UploadResult{}, fmt.Errorf("build multipart: %w", err)
		}
		if _, err := io.Copy(fw, r); err != nil {
			return UploadResult{}, fmt.Errorf("copy %s: %w", name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload-docs", &buf)
	if err != nil {
		return UploadResult{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out UploadResult
	err = c.do(req, &out)
	return out, err
}

// DocInfo describes one registered document.
type DocInfo struct {
	DocID      string `json:"doc_id"`
	Filename   string `json:"filename"`
	FileType   string `json:"file_type"`
	Status     string `json:"status"`
	TextLength int    `json:"text_length"`
	WordCount  int    `json:"word_count"`
}

// DocList is the response of ListDocs.
type DocList struct {
	Documents []DocInfo `json:"documents"`
	Total     int       `json:"total"`
}

// ListDocs returns all registered documents.
func (c *Client) ListDocs(ctx context.Context) (DocList, error) {
	var out DocList
	err := c.get(ctx, "/api/docs", &out)
	return out, err
}

// DeleteDoc removes a document and its stored file.
func (c *Client) DeleteDoc(ctx context.Context, docID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/docs/"+docID, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// RetrieverStats returns the vector index population.
func (c *Client) RetrieverStats(ctx context.Context) (IndexStats, error) {
	var out IndexStats
	err := c.get(ctx, "/api/retriever-stats", &out)
	return out, err
}

// ClearIndex drops every indexed chunk.
func (c *Client) ClearIndex(ctx context.Context) error {
	return c.post(ctx, "/api/clear-index", nil, nil)
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health checks the health of all engine components. A degraded engine
// returns the report with a nil error; transport failures return an error.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return HealthStatus{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return HealthStatus{}, err
	}
	defer resp.Body.Close()

	var out HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return HealthStatus{}, fmt.Errorf("decode health response: %w", err)
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Code: "internal_error"}
		var body struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Code != "" {
			apiErr.Code = body.Code
			apiErr.Message = body.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
