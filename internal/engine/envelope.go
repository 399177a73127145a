package engine

import (
	"encoding/json"
	"fmt"
	"time"
)

// Operation names form a closed set; anything else is rejected at dispatch.
const (
	OpAggregateWeekly = "aggregateWeekly"
	OpCalculateTrends = "calculateTrends"
	OpGenerateHeatmap = "generateHeatmap"
	OpAnalyzeWeakness = "analyzeWeakness"
	OpPredictScores   = "predictScores"
	OpBatchProcess    = "batchProcess"
)

// Operations lists every registered operation name.
func Operations() []string {
	return []string{
		OpAggregateWeekly,
		OpCalculateTrends,
		OpGenerateHeatmap,
		OpAnalyzeWeakness,
		OpPredictScores,
		OpBatchProcess,
	}
}

// Request is the inbound envelope. Data must be present; an empty array is
// valid but null is not. ID is optional; when omitted a correlation id is
// manufactured, so callers needing strict correlation must supply their own.
type Request struct {
	ID        string          `json:"id,omitempty"`
	Operation string          `json:"operation"`
	Data      json.RawMessage `json:"data"`
}

// Response is the uniform outbound envelope. Every request produces exactly
// one response, correlated by ID; consumers must not assume in-order
// delivery across overlapping requests.
type Response struct {
	ID        string `json:"id"`
	Success   bool   `json:"success"`
	Result    any    `json:"result,omitempty"`
	Error     string `json:"error,omitempty"`
	Operation string `json:"operation"`
	Stack     string `json:"stack,omitempty"`
}

// correlationID echoes the caller's id, or manufactures one from the
// operation and the current epoch milliseconds.
func correlationID(req Request) string {
	if req.ID != "" {
		return req.ID
	}
	return fmt.Sprintf("%s-%d", req.Operation, time.Now().UnixMilli())
}

func success(id, operation string, result any) Response {
	return Response{ID: id, Success: true, Result: result, Operation: operation}
}

func failure(id, operation, msg string) Response {
	return Response{ID: id, Success: false, Error: msg, Operation: operation}
}
