// Package engine dispatches analysis requests to the statistical analyzers
// and wraps every outcome in a uniform response envelope. The engine holds
// no state between requests; all accumulation is local to a single call.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/studymetrics/lumen/pkg/analyzer/batch"
	"github.com/studymetrics/lumen/pkg/analyzer/heatmap"
	"github.com/studymetrics/lumen/pkg/analyzer/predict"
	"github.com/studymetrics/lumen/pkg/analyzer/trend"
	"github.com/studymetrics/lumen/pkg/analyzer/weakness"
	"github.com/studymetrics/lumen/pkg/analyzer/weekly"
	"github.com/studymetrics/lumen/pkg/config"
	"github.com/studymetrics/lumen/pkg/models"
)

// requestSchema validates the raw wire shape of an inbound message before
// decoding: operation and data are required, and data must be an array.
const requestSchema = `{
	"type": "object",
	"required": ["operation", "data"],
	"properties": {
		"id": {"type": "string"},
		"operation": {"type": "string", "minLength": 1},
		"data": {"type": "array"}
	}
}`

// Handler executes one operation over the decoded record array.
type Handler func(ctx context.Context, records []models.StudyRecord) (any, error)

// Engine routes operation names to handlers.
type Engine struct {
	handlers map[string]Handler
	schema   *jsonschema.Schema
}

// Option configures the Engine.
type Option func(*options)

type options struct {
	cfg *config.Config
}

// WithConfig sets the analyzer configuration.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// New creates an engine with all operations registered.
func New(opts ...Option) *Engine {
	o := options{cfg: config.DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	cfg := o.cfg

	weeklyAgg := weekly.New()
	trendAnalyzer := trend.New(
		trend.WithStableBand(cfg.Trend.StableBand),
		trend.WithFastThreshold(cfg.Trend.FastThreshold),
	)
	heatmapBuilder := heatmap.New(heatmap.WithTrendDelta(cfg.Heatmap.TrendDelta))
	weaknessAnalyzer := weakness.New(
		weakness.WithTopPatterns(cfg.Weakness.TopPatterns),
		weakness.WithActivityDelta(cfg.Weakness.ActivityDelta),
	)
	predictor := predict.New(
		predict.WithMinDays(cfg.Predict.MinDays),
		predict.WithWindowDays(cfg.Predict.WindowDays),
	)
	batchProcessor := batch.New(
		batch.WithChunkSize(cfg.Batch.ChunkSize),
		batch.WithMaxWorkers(cfg.Batch.MaxWorkers),
	)

	e := &Engine{
		handlers: map[string]Handler{
			OpAggregateWeekly: func(_ context.Context, records []models.StudyRecord) (any, error) {
				return weeklyAgg.Aggregate(records), nil
			},
			OpCalculateTrends: func(_ context.Context, records []models.StudyRecord) (any, error) {
				return trendAnalyzer.Analyze(records), nil
			},
			OpGenerateHeatmap: func(_ context.Context, records []models.StudyRecord) (any, error) {
				return heatmapBuilder.Build(records), nil
			},
			OpAnalyzeWeakness: func(_ context.Context, records []models.StudyRecord) (any, error) {
				return weaknessAnalyzer.Analyze(records), nil
			},
			OpPredictScores: func(_ context.Context, records []models.StudyRecord) (any, error) {
				return predictor.Predict(records), nil
			},
			OpBatchProcess: func(ctx context.Context, records []models.StudyRecord) (any, error) {
				return batchProcessor.Process(ctx, records)
			},
		},
		schema: mustCompileSchema(),
	}

	return e
}

func mustCompileSchema() *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(requestSchema))
	if err != nil {
		panic(fmt.Sprintf("engine: invalid request schema: %v", err))
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("request.json", doc); err != nil {
		panic(fmt.Sprintf("engine: add schema resource: %v", err))
	}
	schema, err := c.Compile("request.json")
	if err != nil {
		panic(fmt.Sprintf("engine: compile request schema: %v", err))
	}
	return schema
}

// Dispatch validates the request, runs the named operation to completion,
// and returns the response envelope. Panics inside a handler are captured
// into a failure envelope with a stack trace; they never escape to the
// caller, so subsequent requests are unaffected.
func (e *Engine) Dispatch(ctx context.Context, req Request) (resp Response) {
	id := correlationID(req)

	defer func() {
		if r := recover(); r != nil {
			resp = failure(id, req.Operation, fmt.Sprintf("internal error: %v", r))
			resp.Stack = string(debug.Stack())
		}
	}()

	if req.Operation == "" {
		return failure(id, req.Operation, "missing operation")
	}
	if len(req.Data) == 0 || bytes.Equal(bytes.TrimSpace(req.Data), []byte("null")) {
		return failure(id, req.Operation, "missing data")
	}

	handler, ok := e.handlers[req.Operation]
	if !ok {
		return failure(id, req.Operation, fmt.Sprintf("Unknown operation: %s", req.Operation))
	}

	var records []models.StudyRecord
	if err := json.Unmarshal(req.Data, &records); err != nil {
		return failure(id, req.Operation, fmt.Sprintf("invalid data payload: %v", err))
	}

	result, err := handler(ctx, records)
	if err != nil {
		return failure(id, req.Operation, err.Error())
	}
	return success(id, req.Operation, result)
}

// HandleMessage processes one raw JSON request envelope and returns the
// encoded response envelope. The raw bytes are validated against the
// request schema before decoding.
func (e *Engine) HandleMessage(ctx context.Context, raw []byte) []byte {
	var req Request
	// Decode leniently first so a schema failure can still echo id/operation.
	_ = json.Unmarshal(raw, &req)
	id := correlationID(req)

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return encodeResponse(failure(id, req.Operation, fmt.Sprintf("invalid request: %v", err)))
	}
	if err := e.schema.Validate(inst); err != nil {
		return encodeResponse(failure(id, req.Operation, fmt.Sprintf("invalid request: %v", err)))
	}

	return encodeResponse(e.Dispatch(ctx, req))
}

func encodeResponse(resp Response) []byte {
	out, err := json.Marshal(resp)
	if err != nil {
		// Result was not serializable; strip it and report.
		fallback := failure(resp.ID, resp.Operation, fmt.Sprintf("response encoding failed: %v", err))
		out, _ = json.Marshal(fallback)
	}
	return out
}
