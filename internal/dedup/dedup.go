// Package dedup decides whether a proposed event already exists in the
// store under a different representation. Strategies run in a fixed order
// and the first one producing candidates wins; an empty result from all of
// them means the event is safe to insert.
package dedup

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	apperrors "github.com/yakimafinds/event-dedup/internal/core/errors"
	"github.com/yakimafinds/event-dedup/internal/geo"
	"github.com/yakimafinds/event-dedup/internal/match"
	"github.com/yakimafinds/event-dedup/internal/platform/observability"
	db "github.com/yakimafinds/event-dedup/internal/storage"
)

// Strategy labels reported on candidates.
const (
	StrategyExact      = "exact"
	StrategySimilarity = "similarity"
	StrategyRecency    = "recency"
)

const (
	defaultMatchThreshold     = 80
	defaultSimilarityWindow   = 30 * time.Minute
	defaultMaxVenueDistanceKm = 0.1
	defaultRecencyWindow      = 24 * time.Hour
	defaultCandidateLimit     = 50
)

// Repository is the candidate query layer backing the cascade. All three
// query shapes are coarse pre-filters; the resolver scores in process.
type Repository interface {
	FindExactMatches(ctx context.Context, title string, start time.Time) ([]db.Event, error)
	FindSimilarCandidates(ctx context.Context, title string, from, to time.Time, limit int) ([]db.Event, error)
	FindRecentSameDay(ctx context.Context, title string, dayStart, dayEnd, createdAfter time.Time) ([]db.Event, error)
}

// Proposed is a pre-insert event as handed over by the ingestion pipeline.
// Coordinates are nil when the source was never geocoded.
type Proposed struct {
	Title     string
	Start     time.Time
	Latitude  *float64
	Longitude *float64
}

// Candidate is a stored event judged to be the same real event as a
// proposed one. Transient, never persisted. Score is meaningful for the
// similarity strategy; exact matches carry 100 and recency matches carry
// no score.
type Candidate struct {
	Event    db.Event
	Score    int
	Strategy string
}

// Options tunes the cascade. Zero values fall back to the defaults the
// scrapers were tuned against.
type Options struct {
	// MatchThreshold is the minimum similarity score kept; the comparison
	// is inclusive, so phonetic-only matches (score 80) are accepted at
	// the default threshold.
	MatchThreshold int

	// SimilarityWindow bounds |Δstart| for similarity candidates.
	SimilarityWindow time.Duration

	// MaxVenueDistanceKm rejects candidates whose coordinates are further
	// apart than this when both sides carry coordinates. When either side
	// lacks coordinates the gate is bypassed (presumed same venue).
	MaxVenueDistanceKm float64

	// RecencyWindow is how far back created_at is considered "recent" by
	// the recency guard.
	RecencyWindow time.Duration

	// CandidateLimit bounds the similarity candidate set fetched from
	// the store.
	CandidateLimit int
}

func (o Options) withDefaults() Options {
	if o.MatchThreshold <= 0 {
		o.MatchThreshold = defaultMatchThreshold
	}

	if o.SimilarityWindow <= 0 {
		o.SimilarityWindow = defaultSimilarityWindow
	}

	if o.MaxVenueDistanceKm <= 0 {
		o.MaxVenueDistanceKm = defaultMaxVenueDistanceKm
	}

	if o.RecencyWindow <= 0 {
		o.RecencyWindow = defaultRecencyWindow
	}

	if o.CandidateLimit <= 0 {
		o.CandidateLimit = defaultCandidateLimit
	}

	return o
}

// Resolver is the public entry point for per-insert duplicate detection.
// It is a pure read over the store: deterministic given fixed store state
// and safe for concurrent use.
type Resolver struct {
	repo   Repository
	opts   Options
	logger *zerolog.Logger
	now    func() time.Time
}

// NewResolver creates a resolver over the given candidate query layer.
func NewResolver(repo Repository, opts Options, logger *zerolog.Logger) *Resolver {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Resolver{
		repo:   repo,
		opts:   opts.withDefaults(),
		logger: logger,
		now:    time.Now,
	}
}

// ParseProposed validates raw ingestion input and builds a Proposed event.
// The title must be non-empty, the start timestamp must parse, and
// coordinates must come in pairs. Rejected input never reaches the store.
func ParseProposed(title, start string, latitude, longitude *float64) (Proposed, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Proposed{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, apperrors.ErrMissingTitle)
	}

	startTime, err := dateparse.ParseAny(start)
	if err != nil {
		return Proposed{}, fmt.Errorf("%w: %w: %q", apperrors.ErrInvalidInput, apperrors.ErrInvalidStartTime, start)
	}

	if (latitude == nil) != (longitude == nil) {
		return Proposed{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, apperrors.ErrIncompleteCoordinates)
	}

	return Proposed{
		Title:     title,
		Start:     startTime,
		Latitude:  latitude,
		Longitude: longitude,
	}, nil
}

// FindDuplicates runs the strategy cascade for a single proposed event and
// returns matched candidates, best first. A non-empty result means "do not
// insert"; the resolver does not decide merge/skip/flag policy. Any query
// failure propagates as a hard error.
func (r *Resolver) FindDuplicates(ctx context.Context, p Proposed) ([]Candidate, error) {
	timer := prometheus.NewTimer(observability.LookupDuration)
	defer timer.ObserveDuration()

	candidates, err := r.findDuplicates(ctx, p)

	switch {
	case err != nil:
		observability.LookupsTotal.WithLabelValues("error").Inc()
	case len(candidates) > 0:
		observability.LookupsTotal.WithLabelValues("match").Inc()
		observability.MatchesTotal.WithLabelValues(candidates[0].Strategy).Inc()
	default:
		observability.LookupsTotal.WithLabelValues("no_match").Inc()
	}

	return candidates, err
}

func (r *Resolver) findDuplicates(ctx context.Context, p Proposed) ([]Candidate, error) {
	if err := validate(p); err != nil {
		return nil, err
	}

	// Exact-key identity is to the second.
	p.Start = p.Start.Truncate(time.Second)

	exact, err := r.findExact(ctx, p)
	if err != nil {
		return nil, err
	}

	if len(exact) > 0 {
		return exact, nil
	}

	similar, err := r.findSimilar(ctx, p)
	if err != nil {
		return nil, err
	}

	if len(similar) > 0 {
		return similar, nil
	}

	return r.findRecent(ctx, p)
}

func validate(p Proposed) error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, apperrors.ErrMissingTitle)
	}

	if p.Start.IsZero() {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, apperrors.ErrInvalidStartTime)
	}

	if (p.Latitude == nil) != (p.Longitude == nil) {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, apperrors.ErrIncompleteCoordinates)
	}

	return nil
}

// findExact matches on strict (title, start_datetime) identity. Any hit is
// an automatic match; this is the cheapest strategy and runs first.
func (r *Resolver) findExact(ctx context.Context, p Proposed) ([]Candidate, error) {
	events, err := r.repo.FindExactMatches(ctx, p.Title, p.Start)
	if err != nil {
		return nil, fmt.Errorf("exact strategy: %w", err)
	}

	candidates := make([]Candidate, 0, len(events))
	for _, e := range events {
		candidates = append(candidates, Candidate{Event: e, Score: match.ScoreExact, Strategy: StrategyExact})
	}

	r.logMatches(p, candidates)

	return candidates, nil
}

// findSimilar fetches a coarse candidate set from the store, then scores
// each candidate in process and applies the geo gate.
func (r *Resolver) findSimilar(ctx context.Context, p Proposed) ([]Candidate, error) {
	from := p.Start.Add(-r.opts.SimilarityWindow)
	to := p.Start.Add(r.opts.SimilarityWindow)

	events, err := r.repo.FindSimilarCandidates(ctx, p.Title, from, to, r.opts.CandidateLimit)
	if err != nil {
		return nil, fmt.Errorf("similarity strategy: %w", err)
	}

	var candidates []Candidate

	for _, e := range events {
		if !r.sameVenue(p, e) {
			continue
		}

		score := match.Score(p.Title, e.Title)
		if score >= r.opts.MatchThreshold {
			candidates = append(candidates, Candidate{Event: e, Score: score, Strategy: StrategySimilarity})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}

		return candidates[i].Event.ID < candidates[j].Event.ID
	})

	r.logMatches(p, candidates)

	return candidates, nil
}

// sameVenue applies the geo gate. Missing coordinates on either side mean
// "proximity unknown", which is treated as same venue, not as a failure.
func (r *Resolver) sameVenue(p Proposed, e db.Event) bool {
	if p.Latitude == nil || p.Longitude == nil || e.Latitude == nil || e.Longitude == nil {
		return true
	}

	return geo.DistanceKm(*p.Latitude, *p.Longitude, *e.Latitude, *e.Longitude) <= r.opts.MaxVenueDistanceKm
}

// findRecent guards against a scraper resubmitting the same source event
// before fine-grained details stabilize: identical title, same calendar day
// (UTC), created within the recency window.
func (r *Resolver) findRecent(ctx context.Context, p Proposed) ([]Candidate, error) {
	dayStart := p.Start.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)
	createdAfter := r.now().Add(-r.opts.RecencyWindow)

	events, err := r.repo.FindRecentSameDay(ctx, p.Title, dayStart, dayEnd, createdAfter)
	if err != nil {
		return nil, fmt.Errorf("recency strategy: %w", err)
	}

	candidates := make([]Candidate, 0, len(events))
	for _, e := range events {
		candidates = append(candidates, Candidate{Event: e, Strategy: StrategyRecency})
	}

	r.logMatches(p, candidates)

	return candidates, nil
}

func (r *Resolver) logMatches(p Proposed, candidates []Candidate) {
	if len(candidates) == 0 {
		return
	}

	r.logger.Debug().
		Str("title", p.Title).
		Time("start", p.Start).
		Str("strategy", candidates[0].Strategy).
		Int64("matched_id", candidates[0].Event.ID).
		Int("score", candidates[0].Score).
		Int("candidates", len(candidates)).
		Msg("duplicate detected")
}
