package dedup

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/yakimafinds/event-dedup/internal/platform/observability"
	db "github.com/yakimafinds/event-dedup/internal/storage"
)

const defaultDeleteRPS = 10

// CleanupRepository is the store surface needed by the batch cleanup job.
type CleanupRepository interface {
	ListDuplicateGroups(ctx context.Context) ([]db.DuplicateGroup, error)
	DeleteEvent(ctx context.Context, id int64) error
}

// CleanupResult summarizes a cleanup run.
type CleanupResult struct {
	GroupsFound    int
	EventsToRemove int
	RemovedIDs     []int64
	SkippedGroups  int
}

// Cleaner removes pre-existing duplicate clusters. Grouping is by exact
// (title, start_datetime) key only: automated deletion on a fuzzy match
// risks destroying a legitimately distinct event, so fuzzy near-duplicates
// are left for manual review.
type Cleaner struct {
	repo    CleanupRepository
	limiter *rate.Limiter
	logger  *zerolog.Logger
}

// NewCleaner creates a cleanup job. deleteRPS paces individual deletes so a
// large run does not starve concurrent ingestion.
func NewCleaner(repo CleanupRepository, deleteRPS float64, logger *zerolog.Logger) *Cleaner {
	if deleteRPS <= 0 {
		deleteRPS = defaultDeleteRPS
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Cleaner{
		repo:    repo,
		limiter: rate.NewLimiter(rate.Limit(deleteRPS), 1),
		logger:  logger,
	}
}

// Run finds duplicate clusters and removes every member but the first of
// each group. With dryRun, counts are computed and nothing is deleted.
// A group whose delete fails is logged and skipped; the run continues.
// Cancellation is checked between groups, so an interrupted run leaves no
// partial state beyond already-committed groups.
func (c *Cleaner) Run(ctx context.Context, dryRun bool) (*CleanupResult, error) {
	groups, err := c.repo.ListDuplicateGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list duplicate groups: %w", err)
	}

	result := &CleanupResult{
		GroupsFound: len(groups),
		RemovedIDs:  []int64{},
	}

	observability.CleanupGroupsFound.Set(float64(len(groups)))

	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("cleanup canceled: %w", err)
		}

		// The first member in store order is canonical.
		removeIDs := group.IDs[1:]
		result.EventsToRemove += len(removeIDs)

		if dryRun {
			continue
		}

		if err := c.removeGroup(ctx, group, removeIDs, result); err != nil {
			result.SkippedGroups++

			observability.CleanupGroupFailures.Inc()

			c.logger.Error().Err(err).
				Str("title", group.Title).
				Time("start", group.StartDatetime).
				Msg("skipping duplicate group after delete failure")
		}
	}

	return result, nil
}

func (c *Cleaner) removeGroup(ctx context.Context, group db.DuplicateGroup, removeIDs []int64, result *CleanupResult) error {
	for _, id := range removeIDs {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("delete pacing: %w", err)
		}

		if err := c.repo.DeleteEvent(ctx, id); err != nil {
			return fmt.Errorf("delete event %d: %w", id, err)
		}

		result.RemovedIDs = append(result.RemovedIDs, id)

		observability.CleanupEventsRemoved.Inc()

		c.logger.Info().
			Int64("event_id", id).
			Int64("canonical_id", group.IDs[0]).
			Str("title", group.Title).
			Time("start", group.StartDatetime).
			Msg("removed duplicate event")
	}

	return nil
}
