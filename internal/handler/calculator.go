package handler

import (
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sakif/accountkit/internal/calculator"
)

// CalculatorHandler exposes the calculator functions as query-string endpoints.
type CalculatorHandler struct {
	logger *zap.Logger
}

// NewCalculatorHandler creates a CalculatorHandler.
func NewCalculatorHandler(logger *zap.Logger) *CalculatorHandler {
	return &CalculatorHandler{logger: logger}
}

// CalcResponse is the body of every successful calculator call.
type CalcResponse struct {
	Op     string `json:"op"`
	Result any    `json:"result"`
}

var intOps = map[string]func(a, b int64) int64{
	"sum":      calculator.Sum,
	"subtract": calculator.Subtract,
	"multiply": calculator.Multiply,
}

// HandleBinary runs one of the two-operand operations.
//
// HTTP: GET /api/calc/{op}?a=7&b=3
//
// sum, subtract and multiply take integers and wrap on overflow; divide
// takes floats and rejects b=0.
func (h *CalculatorHandler) HandleBinary(w http.ResponseWriter, r *http.Request) {
	op := chi.URLParam(r, "op")
	q := r.URL.Query()

	if op == "divide" {
		a, errA := strconv.ParseFloat(q.Get("a"), 64)
		b, errB := strconv.ParseFloat(q.Get("b"), 64)
		if errA != nil || errB != nil || !isFinite(a) || !isFinite(b) {
			writeBadRequest(w, "a and b must be finite numbers")
			return
		}

		result, err := calculator.Divide(a, b)
		if err != nil {
			writeError(w, err)
			return
		}
		if !isFinite(result) {
			writeBadRequest(w, "result is out of range")
			return
		}
		writeJSON(w, http.StatusOK, CalcResponse{Op: op, Result: result})
		return
	}

	fn, ok := intOps[op]
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "unknown operation " + op,
		})
		return
	}

	a, errA := strconv.ParseInt(q.Get("a"), 10, 64)
	b, errB := strconv.ParseInt(q.Get("b"), 10, 64)
	if errA != nil || errB != nil {
		writeBadRequest(w, "a and b must be integers")
		return
	}

	h.logger.Debug("calculator", zap.String("op", op), zap.Int64("a", a), zap.Int64("b", b))
	writeJSON(w, http.StatusOK, CalcResponse{Op: op, Result: fn(a, b)})
}

// HandleFactorial computes n!.
//
// HTTP: GET /api/calc/factorial?n=5
func (h *CalculatorHandler) HandleFactorial(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.ParseInt(r.URL.Query().Get("n"), 10, 64)
	if err != nil {
		writeBadRequest(w, "n must be an integer")
		return
	}

	result, err := calculator.Factorial(n)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CalcResponse{Op: "factorial", Result: result})
}

func isFinite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
