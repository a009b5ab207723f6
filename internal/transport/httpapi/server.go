// Package httpapi exposes the engine over a chi-routed JSON API.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/HansujaB/rag-insights-engine/internal/domain"
	"github.com/HansujaB/rag-insights-engine/internal/usecase/evaluation"
	"github.com/HansujaB/rag-insights-engine/internal/usecase/experiment"
	"github.com/HansujaB/rag-insights-engine/internal/usecase/health"
	"github.com/HansujaB/rag-insights-engine/internal/usecase/rag"
	"github.com/HansujaB/rag-insights-engine/internal/version"
)

// Defaults carries the configured pipeline defaults applied when a request
// omits a parameter.
type Defaults struct {
	ChunkSize      int
	OverlapPercent int
	TopK           int
	Model          string
	Temperature    float64
	ChunkSizes     []int
	EvaluateLegs   bool
	MaxUploadBytes int64
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements the JSON API handlers.
type Server struct {
	rag           RAGRunner
	experiments   ExperimentRunner
	evaluator     Evaluator
	questions     QuestionGenerator
	documents     DocumentManager
	health        HealthChecker
	index         VectorIndex
	defaults      Defaults
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	ragSvc RAGRunner,
	experiments ExperimentRunner,
	evaluator Evaluator,
	questions QuestionGenerator,
	documents DocumentManager,
	healthSvc HealthChecker,
	idx VectorIndex,
	defaults Defaults,
	logger *zap.Logger,
) *Server {
	s := &Server{
		rag:         ragSvc,
		experiments: experiments,
		evaluator:   evaluator,
		questions:   questions,
		documents:   documents,
		health:      healthSvc,
		index:       idx,
		defaults:    defaults,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidConfig, http.StatusBadRequest, "invalid_config"),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, "document_not_found"),
		sentinelHandler(domain.ErrNoChunks, http.StatusBadRequest, "no_chunks"),
		sentinelHandler(domain.ErrDocumentEmpty, http.StatusBadRequest, "document_empty"),
		sentinelHandler(domain.ErrUnsupportedFileType, http.StatusBadRequest, "unsupported_file_type"),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, "vector_dim_mismatch"),
		sentinelHandler(domain.ErrProviderUnavailable, http.StatusBadGateway, "provider_unavailable"),
		sentinelHandler(domain.ErrGenerationFailed, http.StatusBadGateway, "generation_failed"),
		sentinelHandler(domain.ErrEvaluationParse, http.StatusBadGateway, "evaluation_parse_failed"),
	}
	return s
}

// Routes mounts all API endpoints on a fresh router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", s.Banner)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Post("/run-rag", s.RunRAG)
		r.Post("/run-experiment", s.RunExperiment)
		r.Post("/evaluate", s.Evaluate)
		r.Post("/batch-evaluate", s.BatchEvaluate)
		r.Post("/compare-pipelines", s.ComparePipelines)
		r.Post("/generate-questions", s.GenerateQuestions)
		r.Post("/upload-docs", s.UploadDocs)
		r.Get("/docs", s.ListDocs)
		r.Get("/docs/{id}", s.GetDoc)
		r.Delete("/docs/{id}", s.DeleteDoc)
		r.Get("/retriever-stats", s.RetrieverStats)
		r.Post("/clear-index", s.ClearIndex)
	})
	return r
}

type runRAGRequest struct {
	Query          string   `json:"query"`
	DocIDs         []string `json:"doc_ids"`
	ChunkSize      *int     `json:"chunk_size,omitempty"`
	OverlapPercent *int     `json:"overlap_percent,omitempty"`
	TopK           *int     `json:"top_k,omitempty"`
	Model          string   `json:"model,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty"`
	Evaluate       bool     `json:"evaluate,omitempty"`
}

// RunRAG handles POST /api/run-rag.
func (s *Server) RunRAG(w http.ResponseWriter, r *http.Request) {
	var req runRAGRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "query is required")
		return
	}

	cfg, err := s.buildConfig(req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	result, err := s.rag.Run(r.Context(), rag.RunRequest{
		Query:    req.Query,
		DocIDs:   req.DocIDs,
		Config:   cfg,
		Evaluate: req.Evaluate,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) buildConfig(req runRAGRequest) (domain.Config, error) {
	chunkSize := s.defaults.ChunkSize
	if req.ChunkSize != nil {
		chunkSize = *req.ChunkSize
	}
	overlap := s.defaults.OverlapPercent
	if req.OverlapPercent != nil {
		overlap = *req.OverlapPercent
	}
	topK := s.defaults.TopK
	if req.TopK != nil {
		topK = *req.TopK
	}
	model := s.defaults.Model
	if req.Model != "" {
		model = req.Model
	}
	temperature := s.defaults.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	return domain.NewConfig(chunkSize, overlap, topK, model, temperature)
}

type runExperimentRequest struct {
	Query          string   `json:"query"`
	DocIDs         []string `json:"doc_ids"`
	ChunkSizes     []int    `json:"chunk_sizes,omitempty"`
	OverlapPercent *int     `json:"overlap_percent,omitempty"`
	TopK           *int     `json:"top_k,omitempty"`
	Model          string   `json:"model,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty"`
	Evaluate       *bool    `json:"evaluate,omitempty"`
}

// RunExperiment handles POST /api/run-experiment.
func (s *Server) RunExperiment(w http.ResponseWriter, r *http.Request) {
	var req runExperimentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "query is required")
		return
	}

	chunkSizes := req.ChunkSizes
	if len(chunkSizes) == 0 {
		chunkSizes = s.defaults.ChunkSizes
	}

	base, err := s.buildConfig(runRAGRequest{
		OverlapPercent: req.OverlapPercent,
		TopK:           req.TopK,
		Model:          req.Model,
		Temperature:    req.Temperature,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	evaluate := s.defaults.EvaluateLegs
	if req.Evaluate != nil {
		evaluate = *req.Evaluate
	}

	result, err := s.experiments.Run(r.Context(), experiment.Request{
		Query:      req.Query,
		DocIDs:     req.DocIDs,
		ChunkSizes: chunkSizes,
		Base:       base,
		Evaluate:   evaluate,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Evaluate handles POST /api/evaluate.
func (s *Server) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req domain.EvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" || req.GeneratedAnswer == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "query and generated_answer are required")
		return
	}

	score, err := s.evaluator.Evaluate(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, score)
}

type batchEvaluateRequest struct {
	Evaluations []domain.EvaluationRequest `json:"evaluations"`
}

// BatchEvaluate handles POST /api/batch-evaluate.
func (s *Server) BatchEvaluate(w http.ResponseWriter, r *http.Request) {
	var req batchEvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if len(req.Evaluations) == 0 {
		writeError(w, http.StatusBadRequest, "validation_failed", "evaluations must not be empty")
		return
	}

	writeJSON(w, http.StatusOK, s.evaluator.EvaluateBatch(r.Context(), req.Evaluations))
}

type comparePipelinesRequest struct {
	PipelineResults []evaluation.EvaluatedRun `json:"pipeline_results"`
}

// ComparePipelines handles POST /api/compare-pipelines.
func (s *Server) ComparePipelines(w http.ResponseWriter, r *http.Request) {
	var req comparePipelinesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, evaluation.ComparePipelines(req.PipelineResults))
}

type generateQuestionsRequest struct {
	DocID        string `json:"doc_id"`
	NumQuestions int    `json:"num_questions,omitempty"`
	Model        string `json:"model,omitempty"`
}

// GenerateQuestions handles POST /api/generate-questions.
func (s *Server) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	var req generateQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.DocID == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "doc_id is required")
		return
	}

	doc, err := s.documents.Get(r.Context(), req.DocID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if doc.Text == "" {
		s.handleDomainError(w, domain.ErrDocumentEmpty)
		return
	}

	questions, err := s.questions.GenerateQuestions(r.Context(), doc.Text, req.NumQuestions, req.Model)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"doc_id":    doc.ID,
		"questions": questions,
		"total":     len(questions),
	})
}

type uploadOutcome struct {
	DocID      string `json:"doc_id,omitempty"`
	Filename   string `json:"filename"`
	Status     string `json:"status"`
	TextLength int    `json:"text_length,omitempty"`
	Error      string `json:"error,omitempty"`
}

// UploadDocs handles POST /api/upload-docs (multipart, field "files").
// Files are processed independently: a bad file is reported in its slot and
// never blocks the rest of the batch.
func (s *Server) UploadDocs(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.defaults.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid multipart body: "+err.Error())
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "validation_failed", "no files provided under field \"files\"")
		return
	}

	outcomes := make([]uploadOutcome, 0, len(files))
	for _, fh := range files {
		outcome := uploadOutcome{Filename: fh.Filename}

		f, err := fh.Open()
		if err != nil {
			outcome.Status = "error"
			outcome.Error = "open upload: " + err.Error()
			outcomes = append(outcomes, outcome)
			continue
		}

		doc, err := s.documents.Upload(r.Context(), fh.Filename, f)
		f.Close()
		if err != nil {
			outcome.Status = "error"
			outcome.Error = err.Error()
		} else {
			outcome.DocID = doc.ID
			outcome.Status = string(doc.Status)
			outcome.TextLength = doc.TextLength()
		}
		outcomes = append(outcomes, outcome)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"uploaded": outcomes,
		"total":    len(outcomes),
	})
}

type docSummary struct {
	DocID      string `json:"doc_id"`
	Filename   string `json:"filename"`
	FileType   string `json:"file_type"`
	Status     string `json:"status"`
	TextLength int    `json:"text_length"`
	WordCount  int    `json:"word_count"`
}

// ListDocs handles GET /api/docs.
func (s *Server) ListDocs(w http.ResponseWriter, r *http.Request) {
	docs, err := s.documents.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]docSummary, len(docs))
	for i, d := range docs {
		items[i] = docSummary{
			DocID:      d.ID,
			Filename:   d.Filename,
			FileType:   d.FileType,
			Status:     string(d.Status),
			TextLength: d.TextLength(),
			WordCount:  d.WordCount(),
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"documents": items,
		"total":     len(items),
	})
}

// previewChars bounds the text excerpt returned for a single document.
const previewChars = 500

// GetDoc handles GET /api/docs/{id}.
func (s *Server) GetDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documents.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	preview := doc.Text
	if len(preview) > previewChars {
		preview = preview[:previewChars] + "..."
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"doc_id":       doc.ID,
		"filename":     doc.Filename,
		"file_type":    doc.FileType,
		"status":       doc.Status,
		"text_length":  doc.TextLength(),
		"word_count":   doc.WordCount(),
		"text_preview": preview,
	})
}

// DeleteDoc handles DELETE /api/docs/{id}.
func (s *Server) DeleteDoc(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.documents.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RetrieverStats handles GET /api/retriever-stats.
func (s *Server) RetrieverStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.index.Stats())
}

// ClearIndex handles POST /api/clear-index.
func (s *Server) ClearIndex(w http.ResponseWriter, r *http.Request) {
	s.index.Clear()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// Banner handles GET /.
func (s *Server) Banner(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "rag-insights-engine",
		"version": version.Version,
		"docs":    "/api",
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != health.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidConfig,
		domain.ErrDocumentNotFound,
		domain.ErrDocumentEmpty,
		domain.ErrNoChunks,
		domain.ErrUnsupportedFileType,
		domain.ErrVectorDimMismatch,
		domain.ErrProviderUnavailable,
		domain.ErrGenerationFailed,
		domain.ErrEvaluationParse,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
