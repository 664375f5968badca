package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ataljudge/executor/internal/apperror"
	"github.com/ataljudge/executor/internal/executor"
	"github.com/ataljudge/executor/internal/metrics"
)

// ExecuteHandler handles code execution requests from the submission pipeline.
type ExecuteHandler struct {
	exec   executor.Executor
	stats  *metrics.Metrics
	logger *slog.Logger
}

// NewExecuteHandler creates a new ExecuteHandler.
func NewExecuteHandler(exec executor.Executor, stats *metrics.Metrics, logger *slog.Logger) *ExecuteHandler {
	return &ExecuteHandler{
		exec:   exec,
		stats:  stats,
		logger: logger,
	}
}

// HandleExecute processes a single execution request.
//
// HTTP: POST /api/execute
//
// Judged outcomes, including compile errors, runtime crashes and timeouts,
// are 200 responses carrying a result body. Only validation failures (400)
// and infrastructure failures (500) use the error shape.
func (h *ExecuteHandler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	var req executor.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid execution request body", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "invalid request body"))
		return
	}

	h.logger.Info("executing submission", slog.String("language", req.Language))

	result, err := h.exec.Execute(r.Context(), req)
	if err != nil {
		h.logger.Error("execution failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleBatch processes one program against several inputs.
//
// HTTP: POST /api/execute/batch
//
// The response is an array with one judged result per input, in input order.
func (h *ExecuteHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	var req executor.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid batch request body", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "invalid request body"))
		return
	}

	h.logger.Info("executing batch",
		slog.String("language", req.Language),
		slog.Int("inputs", len(req.Stdins)),
	)

	results, err := h.exec.ExecuteBatch(r.Context(), req)
	if err != nil {
		h.logger.Error("batch execution failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, results)
}

// HandleStats returns the in-process execution counters.
//
// HTTP: GET /api/stats
func (h *ExecuteHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stats.Snapshot())
}
