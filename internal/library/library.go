// Package library keeps the collection of saved tattoo designs.
package library

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"tattoovision/internal/domain"
	"tattoovision/internal/infra"
	"tattoovision/internal/metrics"
)

// ErrCorrupt reports a stored collection that cannot be decoded.
var ErrCorrupt = errors.New("library: stored collection is corrupt")

// Store is the backend contract. List returns designs in insertion order.
// Delete reports whether a record was removed.
type Store interface {
	Insert(ctx context.Context, design domain.TattooDesign) error
	List(ctx context.Context) ([]domain.TattooDesign, error)
	Get(ctx context.Context, id string) (domain.TattooDesign, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Library assigns identities to new designs and shields callers from
// unreadable storage on enumeration.
type Library struct {
	store   Store
	logger  infra.Logger
	metrics *metrics.Metrics

	now   func() time.Time
	newID func() string
}

func New(store Store, logger infra.Logger, m *metrics.Metrics) *Library {
	return &Library{
		store:   store,
		logger:  logger.With().Str("component", "library").Logger(),
		metrics: m,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

// Append stores a snapshot of draft under a fresh id and returns it.
func (l *Library) Append(ctx context.Context, draft domain.DesignDraft) (domain.TattooDesign, error) {
	description := strings.TrimSpace(draft.Description)
	if description == "" {
		return domain.TattooDesign{}, domain.FieldErrors{"description": domain.MsgRequired}
	}
	design := domain.TattooDesign{
		ID:                l.newID(),
		Description:       description,
		StylePreferences:  draft.StylePreferences,
		Keywords:          draft.Keywords,
		ReferenceImage:    draft.ReferenceImage,
		GeneratedImageURI: draft.GeneratedImageURI,
		CreatedAt:         l.now().UTC().Truncate(time.Millisecond),
	}
	if err := l.store.Insert(ctx, design); err != nil {
		l.metrics.LibraryOp("append", "error")
		return domain.TattooDesign{}, fmt.Errorf("library: append: %w", err)
	}
	l.metrics.LibraryOp("append", "ok")
	l.logger.Info().Str("design_id", design.ID).Msg("design saved")
	return design, nil
}

// List returns every stored design in insertion order. Unreadable storage
// yields an empty collection.
func (l *Library) List(ctx context.Context) []domain.TattooDesign {
	designs, err := l.store.List(ctx)
	if err != nil {
		l.logger.Warn().Err(err).Msg("library unreadable, returning empty collection")
		l.metrics.LibraryOp("list", "degraded")
		l.metrics.LibraryDegraded()
		return []domain.TattooDesign{}
	}
	l.metrics.LibraryOp("list", "ok")
	if designs == nil {
		return []domain.TattooDesign{}
	}
	return designs
}

// Get returns one design or domain.ErrNotFound.
func (l *Library) Get(ctx context.Context, id string) (domain.TattooDesign, error) {
	design, err := l.store.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			l.metrics.LibraryOp("get", "error")
		}
		return domain.TattooDesign{}, err
	}
	l.metrics.LibraryOp("get", "ok")
	return design, nil
}

// Remove deletes the design with id. Unknown ids are a no-op.
func (l *Library) Remove(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	removed, err := l.store.Delete(ctx, id)
	if err != nil {
		l.metrics.LibraryOp("remove", "error")
		return fmt.Errorf("library: remove: %w", err)
	}
	if !removed {
		l.metrics.LibraryOp("remove", "noop")
		return nil
	}
	l.metrics.LibraryOp("remove", "ok")
	l.logger.Info().Str("design_id", id).Msg("design removed")
	return nil
}

// SortNewestFirst returns a copy of designs ordered by creation time,
// newest first. Equal timestamps keep their relative order reversed so the
// later insert still comes first.
func SortNewestFirst(designs []domain.TattooDesign) []domain.TattooDesign {
	out := make([]domain.TattooDesign, len(designs))
	for i, d := range designs {
		out[len(designs)-1-i] = d
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
