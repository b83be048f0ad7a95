// Package content loads test structure from the scoring backend and caches
// each part after its first visit. Part enrichment is a three-level fetch
// (part detail, per-group questions, per-question options) fanned out
// concurrently and merged into one Part value before caching.
package content

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/linguaflow/delivery-client/internal/cache"
	"github.com/linguaflow/delivery-client/internal/models"
	"github.com/linguaflow/delivery-client/internal/utils"
)

// Fetcher is the slice of the backend contract the loader needs. The
// scoring client satisfies it.
type Fetcher interface {
	GetTestStructure(ctx context.Context, testID string) (*models.TestStructure, error)
	GetPartDetail(ctx context.Context, partID string) (*models.PartDetail, error)
	GetGroupQuestions(ctx context.Context, groupID string) ([]models.Question, error)
	GetQuestionOptions(ctx context.Context, questionID string) ([]models.Option, error)
}

// LoadError is a blocking structure or part fetch failure. Retry is the
// caller's, by re-navigating.
type LoadError struct {
	Resource string
	ID       string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s %s: %v", e.Resource, e.ID, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

type Loader struct {
	fetcher Fetcher
	logger  utils.Logger

	mu    sync.RWMutex
	parts map[string]*models.Part

	flight singleflight.Group

	// secondLevel is an optional shared cache consulted on a memory miss and
	// written through after a load. May be nil.
	secondLevel cache.CacheService
}

func NewLoader(fetcher Fetcher, secondLevel cache.CacheService, logger utils.Logger) *Loader {
	return &Loader{
		fetcher:     fetcher,
		logger:      logger,
		parts:       make(map[string]*models.Part),
		secondLevel: secondLevel,
	}
}

// Fetch returns the test skeleton: parts with identifiers and names only.
func (l *Loader) Fetch(ctx context.Context, testID string) (*models.Test, error) {
	structure, err := l.fetcher.GetTestStructure(ctx, testID)
	if err != nil {
		return nil, &LoadError{Resource: "test structure", ID: testID, Err: err}
	}

	test := &models.Test{
		ID:       structure.TestID,
		Title:    structure.Title,
		Skill:    structure.Skill,
		Duration: structure.Duration,
		AudioRef: structure.AudioRef,
		Parts:    make([]models.Part, len(structure.Parts)),
	}
	for i, ref := range structure.Parts {
		test.Parts[i] = models.Part{ID: ref.ID, Name: ref.Name}
	}
	return test, nil
}

// Cached reports whether the part is already in the memory cache.
func (l *Loader) Cached(partID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.parts[partID]
	return ok
}

// LoadPart is idempotent and memoized: a cache hit returns synchronously
// without touching the network, which is also how late duplicate triggers
// for the same part are ignored. Concurrent loads for different parts may be
// in flight at once; concurrent loads for the same part share one fetch.
func (l *Loader) LoadPart(ctx context.Context, partID string) (*models.Part, error) {
	l.mu.RLock()
	if part, ok := l.parts[partID]; ok {
		l.mu.RUnlock()
		return part, nil
	}
	l.mu.RUnlock()

	result, err, _ := l.flight.Do(partID, func() (interface{}, error) {
		if l.secondLevel != nil {
			var cached models.Part
			if err := l.secondLevel.Get(ctx, partCacheKey(partID), &cached); err == nil {
				l.store(partID, &cached)
				return &cached, nil
			} else if !errors.Is(err, cache.ErrCacheMiss) {
				l.logger.Warn("Second-level cache read failed", "part_id", partID, "error", err)
			}
		}

		part, err := l.enrichPart(ctx, partID)
		if err != nil {
			return nil, err
		}
		l.store(partID, part)

		if l.secondLevel != nil {
			// No TTL: part content only changes through an explicit refresh.
			if err := l.secondLevel.Set(ctx, partCacheKey(partID), part, 0); err != nil {
				l.logger.Warn("Second-level cache write failed", "part_id", partID, "error", err)
			}
		}
		return part, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Part), nil
}

// Invalidate drops the part from both cache levels. This is the only
// invalidation path; nothing expires by time.
func (l *Loader) Invalidate(ctx context.Context, partID string) {
	l.mu.Lock()
	delete(l.parts, partID)
	l.mu.Unlock()

	if l.secondLevel != nil {
		if err := l.secondLevel.Delete(ctx, partCacheKey(partID)); err != nil {
			l.logger.Warn("Second-level cache invalidation failed", "part_id", partID, "error", err)
		}
	}
}

func (l *Loader) store(partID string, part *models.Part) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.parts[partID] = part
}

// enrichPart performs the three-level fetch and merges the results. A failed
// question or group sub-fetch degrades to an empty list for that item; only
// the part-detail fetch itself is fatal.
func (l *Loader) enrichPart(ctx context.Context, partID string) (*models.Part, error) {
	detail, err := l.fetcher.GetPartDetail(ctx, partID)
	if err != nil {
		return nil, &LoadError{Resource: "part", ID: partID, Err: err}
	}

	part := &models.Part{
		ID:       detail.ID,
		Name:     detail.Name,
		Passage:  detail.Passage,
		AudioRef: detail.AudioRef,
		ImageRef: detail.ImageRef,
		Groups:   make([]models.QuestionGroup, len(detail.Groups)),
	}

	var wg sync.WaitGroup
	for i, ref := range detail.Groups {
		part.Groups[i] = models.QuestionGroup{
			ID:       ref.ID,
			Type:     ref.Type,
			Title:    ref.Title,
			Quantity: ref.Quantity,
			ImageRef: ref.ImageRef,
		}

		wg.Add(1)
		go func(i int, groupID string) {
			defer wg.Done()
			part.Groups[i].Questions = l.loadGroupQuestions(ctx, groupID)
		}(i, ref.ID)
	}
	wg.Wait()

	return part, nil
}

func (l *Loader) loadGroupQuestions(ctx context.Context, groupID string) []models.Question {
	questions, err := l.fetcher.GetGroupQuestions(ctx, groupID)
	if err != nil {
		l.logger.Warn("Group question fetch failed, continuing with empty list",
			"group_id", groupID, "error", err)
		return []models.Question{}
	}

	var wg sync.WaitGroup
	for i := range questions {
		wg.Add(1)
		go func(q *models.Question) {
			defer wg.Done()
			options, err := l.fetcher.GetQuestionOptions(ctx, q.ID)
			if err != nil {
				l.logger.Warn("Option fetch failed, continuing with empty list",
					"question_id", q.ID, "error", err)
				return
			}
			q.Options = options
		}(&questions[i])
	}
	wg.Wait()

	return questions
}

func partCacheKey(partID string) string {
	return "delivery:part:" + partID
}
