// Package batch chunks very large record arrays for bounded-memory summary
// processing.
package batch

import (
	"context"
	"runtime"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"github.com/studymetrics/lumen/pkg/models"
	"github.com/studymetrics/lumen/pkg/stats"
)

// Processor splits records into fixed-size chunks, summarizes each chunk on
// a bounded worker pool, and merges the summaries. Cancellation is honored
// at chunk boundaries: a chunk either runs to completion or never starts.
type Processor struct {
	chunkSize  int
	maxWorkers int
}

// Option configures the Processor.
type Option func(*Processor)

// WithChunkSize sets the number of records per chunk.
func WithChunkSize(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.chunkSize = n
		}
	}
}

// WithMaxWorkers sets the worker pool size. Values <= 0 default to NumCPU.
func WithMaxWorkers(n int) Option {
	return func(p *Processor) {
		p.maxWorkers = n
	}
}

// New creates a batch processor.
func New(opts ...Option) *Processor {
	p := &Processor{chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(p)
	}
	if p.maxWorkers <= 0 {
		p.maxWorkers = runtime.NumCPU()
	}
	return p
}

// Process summarizes records chunk by chunk. Chunk summaries retain input
// order regardless of worker scheduling.
func (p *Processor) Process(ctx context.Context, records []models.StudyRecord) (*Result, error) {
	return p.ProcessWithProgress(ctx, records, nil)
}

// ProcessWithProgress is Process with a per-chunk callback receiving the
// number of records just summarized. The callback must be safe for
// concurrent use.
func (p *Processor) ProcessWithProgress(ctx context.Context, records []models.StudyRecord, onChunk func(n int)) (*Result, error) {
	chunks := chunk(records, p.chunkSize)
	summaries := make([]Summary, len(chunks))

	wp := pool.New().WithMaxGoroutines(p.maxWorkers).WithContext(ctx)
	for i, c := range chunks {
		wp.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			summaries[i] = summarize(c)
			if onChunk != nil {
				onChunk(len(c))
			}
			return nil
		})
	}
	if err := wp.Wait(); err != nil {
		return nil, err
	}

	return &Result{
		TotalProcessed: len(records),
		Batches:        summaries,
		OverallSummary: merge(summaries),
	}, nil
}

// chunk splits records into slices of at most size records.
func chunk(records []models.StudyRecord, size int) [][]models.StudyRecord {
	if len(records) == 0 {
		return nil
	}
	chunks := make([][]models.StudyRecord, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		chunks = append(chunks, records[start:end])
	}
	return chunks
}

// summarize computes the lightweight summary for one chunk. Score stats
// cover only records carrying a score; the processed count covers all.
func summarize(records []models.StudyRecord) Summary {
	s := Summary{ProcessedCount: len(records)}

	subjects := make(map[string]struct{})
	var scoreSum float64
	scored := 0

	for _, r := range records {
		if r.Subject != "" {
			subjects[r.Subject] = struct{}{}
		}
		if r.Score == nil {
			continue
		}
		score := stats.ClampPercent(*r.Score)
		if scored == 0 || score < s.MinScore {
			s.MinScore = score
		}
		if scored == 0 || score > s.MaxScore {
			s.MaxScore = score
		}
		scoreSum += score
		scored++
	}

	if scored > 0 {
		s.AvgScore = scoreSum / float64(scored)
	}
	s.Subjects = sortedKeys(subjects)

	return s
}

// merge combines chunk summaries into one overall summary, weighting the
// average by chunk record count.
func merge(summaries []Summary) Overall {
	o := Overall{}
	subjects := make(map[string]struct{})
	var weightedSum float64
	first := true

	for _, s := range summaries {
		o.TotalCount += s.ProcessedCount
		weightedSum += s.AvgScore * float64(s.ProcessedCount)
		for _, subj := range s.Subjects {
			subjects[subj] = struct{}{}
		}
		if s.ProcessedCount == 0 {
			continue
		}
		if first || s.MinScore < o.MinScore {
			o.MinScore = s.MinScore
		}
		if first || s.MaxScore > o.MaxScore {
			o.MaxScore = s.MaxScore
		}
		first = false
	}

	if o.TotalCount > 0 {
		o.OverallAvgScore = weightedSum / float64(o.TotalCount)
	}
	o.Subjects = sortedKeys(subjects)

	return o
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
