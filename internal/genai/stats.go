package genai

import (
	"context"
	"sort"
	"sync"
	"time"
)

type sample struct {
	at         time.Time
	stage      string
	durationMs int64
}

// StageSnapshot aggregates the samples attributed to one pipeline stage.
type StageSnapshot struct {
	Count int     `json:"count"`
	AvgMs float64 `json:"avg_ms"`
}

// Snapshot is a point-in-time aggregate of generation-call latencies.
type Snapshot struct {
	Count  int                      `json:"count"`
	MinMs  int64                    `json:"min_ms"`
	MaxMs  int64                    `json:"max_ms"`
	AvgMs  float64                  `json:"avg_ms"`
	P50Ms  float64                  `json:"p50_ms"`
	P95Ms  float64                  `json:"p95_ms"`
	P99Ms  float64                  `json:"p99_ms"`
	Stages map[string]StageSnapshot `json:"stages,omitempty"`
}

// Stats tracks recent generation-call latencies within a rolling window,
// attributed to the pipeline stage that made each call.
type Stats struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
}

func NewStats(maxAge time.Duration) *Stats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Stats{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
	}
}

type stageKey struct{}

// WithStage tags ctx so the client attributes the call's latency to the named
// pipeline stage.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, stageKey{}, stage)
}

// StageFrom returns the stage carried by ctx, or "generate" for untagged calls.
func StageFrom(ctx context.Context) string {
	if s, _ := ctx.Value(stageKey{}).(string); s != "" {
		return s
	}
	return "generate"
}

func (s *Stats) Record(stage string, durationMs int64) {
	if stage == "" {
		stage = "generate"
	}
	if durationMs < 0 {
		durationMs = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples = append(s.samples, sample{at: now, stage: stage, durationMs: durationMs})
}

func (s *Stats) Snapshot() Snapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	if len(s.samples) == 0 {
		return Snapshot{}
	}

	values := make([]int64, 0, len(s.samples))
	var sum int64
	stageSums := make(map[string]int64)
	stageCounts := make(map[string]int)
	for _, sm := range s.samples {
		values = append(values, sm.durationMs)
		sum += sm.durationMs
		stageSums[sm.stage] += sm.durationMs
		stageCounts[sm.stage]++
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	stages := make(map[string]StageSnapshot, len(stageCounts))
	for stage, count := range stageCounts {
		stages[stage] = StageSnapshot{
			Count: count,
			AvgMs: float64(stageSums[stage]) / float64(count),
		}
	}

	return Snapshot{
		Count:  len(values),
		MinMs:  values[0],
		MaxMs:  values[len(values)-1],
		AvgMs:  float64(sum) / float64(len(values)),
		P50Ms:  percentile(values, 50),
		P95Ms:  percentile(values, 95),
		P99Ms:  percentile(values, 99),
		Stages: stages,
	}
}

func (s *Stats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	writeIdx := 0
	for _, sm := range s.samples {
		if !sm.at.Before(cutoff) {
			s.samples[writeIdx] = sm
			writeIdx++
		}
	}
	s.samples = s.samples[:writeIdx]
}

func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}
