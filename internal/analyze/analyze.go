// Package analyze is the engine's public entry point. It composes the
// distribution scorer and the constraint evaluator into one AnalysisResult,
// merging failures into partial results instead of aborting: input-data
// problems narrow coverage, they never fail an in-flight call.
package analyze

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"genlens/internal/evaluate"
	"genlens/internal/rules"
	"genlens/internal/scoring"
	"genlens/internal/structure"
)

// Request is one analysis call: a code fragment, its declared language, and
// optionally per-position candidate-token data from the completion producer.
type Request struct {
	Fragment   string                     `json:"code_fragment"`
	Language   string                     `json:"language"`
	Candidates [][]scoring.TokenCandidate `json:"candidates_per_position,omitempty"`
}

// Result is the merged outcome of one analysis call. Entities are created
// fresh per call and never mutated afterwards.
type Result struct {
	ID             string                  `json:"id"`
	DecisionPoints []scoring.DecisionPoint `json:"decision_points"`
	Violations     []evaluate.Violation    `json:"violations"`
	StructuralMode structure.Mode          `json:"structural_mode"`

	// Partial signals best-effort coverage: structuring fell back to the
	// pattern view, a rule was skipped or faulted, or candidate positions
	// failed scoring.
	Partial bool `json:"partial"`

	Summary evaluate.Summary `json:"summary"`

	// Diagnostics for callers that want to explain degraded coverage.
	FallbackReason  string               `json:"fallback_reason,omitempty"`
	SkippedRules    []string             `json:"skipped_rules,omitempty"`
	RuleFaults      []evaluate.RuleFault `json:"rule_faults,omitempty"`
	FailedPositions int                  `json:"failed_positions,omitempty"`

	RuleSetVersion string `json:"rule_set_version"`
	DurationMs     int64  `json:"duration_ms"`
}

// Options tunes the engine. Zero values fall back to engine defaults.
type Options struct {
	// EntropyThreshold is the decision-point threshold in bits.
	EntropyThreshold float64
	// SnippetWidth bounds violation snippets, in runes.
	SnippetWidth int
}

// Engine analyzes code fragments against the active rule set. An Engine is
// safe for concurrent use: each call only reads an atomic rule set snapshot
// and touches no shared mutable state.
type Engine struct {
	registry *rules.Registry
	scorer   *scoring.Scorer
	opts     Options
	logger   *slog.Logger
}

// NewEngine creates an engine over a rule registry. The registry is the only
// configuration that can change during the process lifetime, via its own
// serialized reload.
func NewEngine(registry *rules.Registry, opts Options, logger *slog.Logger) *Engine {
	if opts.EntropyThreshold == 0 {
		opts.EntropyThreshold = scoring.DefaultThreshold
	}
	if opts.SnippetWidth == 0 {
		opts.SnippetWidth = evaluate.DefaultSnippetWidth
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		registry: registry,
		scorer:   scoring.NewScorer(opts.EntropyThreshold),
		opts:     opts,
		logger:   logger,
	}
}

// Analyze produces one AnalysisResult for the request. It never fails for
// input-data reasons; degraded coverage is reported through Partial and the
// diagnostic fields. The whole call sees a single rule set snapshot.
func (e *Engine) Analyze(ctx context.Context, req Request) *Result {
	start := time.Now()
	set := e.registry.Current()

	src := structure.Build(ctx, req.Fragment, req.Language)
	ev := evaluate.Run(src, set, e.opts.SnippetWidth)
	points, failed := e.scorer.Score(req.Candidates)

	res := &Result{
		ID:              uuid.NewString(),
		DecisionPoints:  points,
		Violations:      ev.Violations,
		StructuralMode:  src.Mode(),
		Summary:         evaluate.Summarize(ev.Violations),
		FallbackReason:  src.Reason(),
		SkippedRules:    ev.Skipped,
		RuleFaults:      ev.Faults,
		FailedPositions: failed,
		RuleSetVersion:  set.Version(),
	}
	if res.DecisionPoints == nil {
		res.DecisionPoints = make([]scoring.DecisionPoint, 0)
	}
	if res.Violations == nil {
		res.Violations = make([]evaluate.Violation, 0)
	}

	res.Partial = src.Mode() == structure.ModePattern || ev.Degraded() || failed > 0

	res.DurationMs = time.Since(start).Milliseconds()

	for _, fault := range ev.Faults {
		e.logger.Warn("rule predicate faulted",
			"rule", fault.RuleID,
			"reason", fault.Reason,
			"analysis", res.ID)
	}
	e.logger.Debug("analysis complete",
		"analysis", res.ID,
		"mode", string(res.StructuralMode),
		"violations", len(res.Violations),
		"decision_points", len(res.DecisionPoints),
		"partial", res.Partial,
		"duration_ms", res.DurationMs)

	return res
}
