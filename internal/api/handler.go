package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/eugenenazirov/bin-packing/internal/binpacking"
	"github.com/eugenenazirov/bin-packing/internal/comparison"
	"github.com/eugenenazirov/bin-packing/internal/generator"
	"github.com/eugenenazirov/bin-packing/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const defaultSolveTimeout = 5 * time.Second

// Handler wires solvers, the comparison harness and report storage into HTTP handlers.
type Handler struct {
	solvers    map[string]binpacking.Solver
	comparator *comparison.Comparator
	storage    storage.Storage
	observer   comparison.Observer
	validate   *validator.Validate

	solveTimeout time.Duration
	clock        func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithSolveTimeout bounds how long a single request may spend searching.
func WithSolveTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		if d > 0 {
			h.solveTimeout = d
		}
	}
}

// WithObserver reports every solver run, e.g. to metrics.
func WithObserver(o comparison.Observer) HandlerOption {
	return func(h *Handler) {
		h.observer = o
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(exact, greedy binpacking.Solver, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		solvers: map[string]binpacking.Solver{
			exact.Name():  exact,
			greedy.Name(): greedy,
		},
		storage:      store,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		solveTimeout: defaultSolveTimeout,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}

	var compareOpts []comparison.Option
	if h.observer != nil {
		compareOpts = append(compareOpts, comparison.WithObserver(h.observer))
	}
	h.comparator = comparison.New(exact, greedy, compareOpts...)
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleSolve(w http.ResponseWriter, r *http.Request) {
	algorithm := r.PathValue("algorithm")
	solver, ok := h.solvers[algorithm]
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown algorithm", fmt.Sprintf("algorithm %q is not supported", algorithm), "Use one of: exact, first-fit")
		return
	}

	instance, ok := h.decodeInstance(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.solveTimeout)
	defer cancel()

	start := time.Now()
	sol, err := solver.Solve(ctx, instance)
	elapsed := time.Since(start)
	if h.observer != nil {
		h.observer.ObserveSolve(solver.Name(), elapsed, sol.Bins, err)
	}
	if err != nil {
		writeSolveError(w, err)
		return
	}

	resp := solveResponse{
		Algorithm:         solver.Name(),
		Partition:         sol.Partition,
		Bins:              sol.Bins,
		CalculationTimeMs: elapsed.Milliseconds(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	instance, ok := h.decodeInstance(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.solveTimeout)
	defer cancel()

	report, err := h.comparator.Compare(ctx, instance)
	if err != nil {
		writeSolveError(w, err)
		return
	}

	id, err := h.storage.Save(report)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, compareResponse{ID: id, Report: report})
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", validationDetails(err))
		return
	}

	policy, err := generator.PolicyByName(req.Capacity)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	instance, err := generator.New(req.Seed, generator.WithCapacity(policy)).Generate(req.Items)
	if err != nil {
		switch {
		case errors.Is(err, generator.ErrInvalidSize):
			writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		case errors.Is(err, generator.ErrUnsatisfiable):
			writeError(w, http.StatusUnprocessableEntity, "Cannot generate instance", err.Error(), "Request more items or a smaller capacity")
		default:
			writeInternalError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, instance)
}

func (h *Handler) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			writeError(w, http.StatusBadRequest, "Invalid request", "limit must be a non-negative integer")
			return
		}
		limit = value
	}

	records, err := h.storage.List(limit)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reportsResponse{Reports: records})
}

func (h *Handler) handleGetReport(w http.ResponseWriter, r *http.Request) {
	record, err := h.storage.Get(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Report not found", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// decodeInstance parses and validates the request body, writing the error response itself.
func (h *Handler) decodeInstance(w http.ResponseWriter, r *http.Request) (binpacking.Instance, bool) {
	var req instanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return binpacking.Instance{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", validationDetails(err))
		return binpacking.Instance{}, false
	}

	instance := binpacking.NewInstance(req.Weights, req.Capacity)
	if req.ItemCount != nil {
		instance.ItemCount = *req.ItemCount
	}
	return instance, true
}

func writeSolveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, binpacking.ErrTooManyItems):
		writeError(w, http.StatusUnprocessableEntity, "Instance too large", err.Error(), "Use the first-fit solver for large instances")
	case errors.Is(err, binpacking.ErrItemTooHeavy):
		writeError(w, http.StatusUnprocessableEntity, "Infeasible instance", err.Error(), "Increase the capacity to at least the heaviest item")
	case errors.Is(err, binpacking.ErrSearchAborted):
		writeError(w, http.StatusServiceUnavailable, "Search aborted", err.Error(), "Retry with fewer items or use the first-fit solver")
	case errors.Is(err, binpacking.ErrItemCountMismatch),
		errors.Is(err, binpacking.ErrNoItems),
		errors.Is(err, binpacking.ErrInvalidCapacity),
		errors.Is(err, binpacking.ErrInvalidWeight):
		writeError(w, http.StatusBadRequest, "Invalid instance", err.Error())
	default:
		writeInternalError(w, err)
	}
}

func validationDetails(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type instanceRequest struct {
	ItemCount *int      `json:"itemCount" validate:"omitempty,gte=0"`
	Weights   []float64 `json:"weights" validate:"required,min=1,dive,gte=0"`
	Capacity  float64   `json:"capacity" validate:"gt=0"`
}

type generateRequest struct {
	Items    int    `json:"items" validate:"required,min=1,max=100"`
	Capacity string `json:"capacity" validate:"omitempty,oneof=sqrt unit"`
	Seed     uint64 `json:"seed"`
}

type solveResponse struct {
	Algorithm         string               `json:"algorithm"`
	Partition         binpacking.Partition `json:"partition"`
	Bins              int                  `json:"bins"`
	CalculationTimeMs int64                `json:"calculationTimeMs"`
}

type compareResponse struct {
	ID string `json:"id"`
	comparison.Report
}

type reportsResponse struct {
	Reports []storage.Record `json:"reports"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
