package sweep

import (
	"cmp"
	"context"
	"fmt"
	"runtime"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gw2-resim/internal/character"
	"gw2-resim/internal/engine"
	"gw2-resim/internal/gamedata"
	"gw2-resim/internal/timeline"
)

var tracer = otel.Tracer("gw2-resim/sweep")

// Order selects how results are returned.
type Order int

const (
	// OrderEnumeration keeps the order of Space.Candidates.
	OrderEnumeration Order = iota
	// OrderDamage sorts by total damage, highest first. Ties keep
	// enumeration order.
	OrderDamage
)

// ParseOrder resolves "damage" or "enumeration".
func ParseOrder(name string) (Order, error) {
	switch name {
	case "", "damage":
		return OrderDamage, nil
	case "enumeration":
		return OrderEnumeration, nil
	}
	return 0, fmt.Errorf("unknown result order %q", name)
}

// Result is the outcome of one candidate.
type Result struct {
	Candidate   Candidate
	Total       int64
	BySource    map[uint32]int64
	Fingerprint uint64
}

// Report is a finished sweep.
type Report struct {
	RunID   uuid.UUID
	Started time.Time
	Elapsed time.Duration
	Results []Result
}

// Best returns the highest damage result.
func (r *Report) Best() (Result, bool) {
	if len(r.Results) == 0 {
		return Result{}, false
	}
	return slices.MaxFunc(r.Results, func(a, b Result) int {
		if c := cmp.Compare(a.Total, b.Total); c != 0 {
			return c
		}
		// lower index wins ties
		return cmp.Compare(b.Candidate.Index, a.Candidate.Index)
	}), true
}

// Baseline returns the result of the recorded build, if it was swept.
func (r *Report) Baseline() (Result, bool) {
	for _, res := range r.Results {
		if res.Candidate.IsBaseline() {
			return res, true
		}
	}
	return Result{}, false
}

// Explorer runs a space of candidates against one timeline.
type Explorer struct {
	Space     Space
	Baseline  character.Build
	MaxHealth int64
	Meta      *gamedata.Table
	// Concurrency bounds parallel runs; zero means GOMAXPROCS.
	Concurrency int
	Order       Order
	Logger      *zap.Logger
	// Progress, when set, is called after every finished candidate. It may be
	// called from several goroutines.
	Progress func(done, total int)
}

// Run sweeps every candidate of the space.
func (e *Explorer) Run(ctx context.Context, seq timeline.Sequence) (*Report, error) {
	if err := e.Space.Validate(); err != nil {
		return nil, fmt.Errorf("sweep space: %w", err)
	}
	return e.RunCandidates(ctx, seq, e.Space.Candidates())
}

// RunCandidates sweeps an explicit candidate list. The first failing
// candidate cancels the rest and its error is returned.
func (e *Explorer) RunCandidates(ctx context.Context, seq timeline.Sequence, candidates []Candidate) (report *Report, err error) {
	report = &Report{RunID: uuid.New(), Started: time.Now()}
	log := e.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.Stringer("run_id", report.RunID))
	limit := e.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	meta := e.Meta
	if meta == nil {
		meta = gamedata.DefaultTable()
	}

	ctx, span := tracer.Start(ctx, "sweep")
	span.SetAttributes(
		attribute.String("run_id", report.RunID.String()),
		attribute.Int("candidates", len(candidates)),
		attribute.Int("events", len(seq)),
		attribute.Int("concurrency", limit),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	log.Info("sweep started", zap.Int("candidates", len(candidates)), zap.Int("concurrency", limit))

	results := make([]Result, len(candidates))
	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, c := range candidates {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := e.runCandidate(gctx, meta, log, seq, c)
			if err != nil {
				return fmt.Errorf("candidate %d (%s): %w", c.Index, c, err)
			}
			results[i] = res
			n := done.Add(1)
			if e.Progress != nil {
				e.Progress(int(n), len(candidates))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if e.Order == OrderDamage {
		slices.SortStableFunc(results, func(a, b Result) int {
			return cmp.Compare(b.Total, a.Total)
		})
	}
	report.Results = results
	report.Elapsed = time.Since(report.Started)
	log.Info("sweep finished", zap.Int("candidates", len(results)), zap.Duration("elapsed", report.Elapsed))
	return report, nil
}

func (e *Explorer) runCandidate(ctx context.Context, meta *gamedata.Table, log *zap.Logger, seq timeline.Sequence, c Candidate) (Result, error) {
	_, span := tracer.Start(ctx, "candidate", trace.WithAttributes(
		attribute.Int("index", c.Index),
		attribute.String("candidate", c.String()),
	))
	defer span.End()

	build, excl, err := c.Build(e.Baseline)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}
	dist, err := engine.NewSimulator(build, e.MaxHealth, excl, meta, log).Run(seq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}
	span.SetAttributes(attribute.Int64("total", dist.Total))
	return Result{
		Candidate:   c,
		Total:       dist.Total,
		BySource:    dist.BySource,
		Fingerprint: dist.Fingerprint(),
	}, nil
}
