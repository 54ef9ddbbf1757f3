// Package engine is the entry point for top-level chinook lookups: exact
// lookup by id and fuzzy lookup by name or title.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/syssam/chinook"
	"github.com/syssam/chinook/repository"
	"github.com/syssam/chinook/similarity"
)

// DefaultSimilarityThreshold is the score a candidate must exceed to be
// returned by a fuzzy lookup.
const DefaultSimilarityThreshold = 0.9

// Engine resolves root entities. It is safe for concurrent use.
type Engine struct {
	repo      *repository.Repository
	log       *slog.Logger
	threshold atomic.Uint64 // math.Float64bits
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) error {
		e.log = l
		return nil
	}
}

// WithSimilarityThreshold sets the fuzzy lookup threshold. It must be in (0, 1).
func WithSimilarityThreshold(f float64) Option {
	return func(e *Engine) error {
		return e.SetSimilarityThreshold(f)
	}
}

// New returns an Engine reading through repo.
func New(repo *repository.Repository, opts ...Option) (*Engine, error) {
	e := &Engine{repo: repo, log: slog.Default()}
	e.threshold.Store(math.Float64bits(DefaultSimilarityThreshold))
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// ValidateThreshold reports whether f can be used as a similarity threshold.
func ValidateThreshold(f float64) error {
	if math.IsNaN(f) || f <= 0 || f >= 1 {
		return fmt.Errorf("engine: similarity threshold %v out of range (0, 1)", f)
	}
	return nil
}

// SetSimilarityThreshold replaces the fuzzy lookup threshold. Lookups already
// running keep the value they started with.
func (e *Engine) SetSimilarityThreshold(f float64) error {
	if err := ValidateThreshold(f); err != nil {
		return err
	}
	e.threshold.Store(math.Float64bits(f))
	return nil
}

// SimilarityThreshold returns the current fuzzy lookup threshold.
func (e *Engine) SimilarityThreshold() float64 {
	return math.Float64frombits(e.threshold.Load())
}

// Album returns the album with the given id. id may be any value ParseID
// accepts; anything else fails with *chinook.MalformedInputError. A
// well-formed id without a row fails with *chinook.NotFoundError.
func (e *Engine) Album(ctx context.Context, id any) (*chinook.Album, error) {
	return exact(ctx, e, chinook.KindAlbum, id, e.repo.GetAlbum)
}

// Artist returns the artist with the given id.
func (e *Engine) Artist(ctx context.Context, id any) (*chinook.Artist, error) {
	return exact(ctx, e, chinook.KindArtist, id, e.repo.GetArtist)
}

// Track returns the track with the given id.
func (e *Engine) Track(ctx context.Context, id any) (*chinook.Track, error) {
	return exact(ctx, e, chinook.KindTrack, id, e.repo.GetTrack)
}

// Albums returns every album whose title scores strictly above the threshold
// against title, in storage order. A nil title matches nothing.
func (e *Engine) Albums(ctx context.Context, title *string) ([]*chinook.Album, error) {
	if title == nil {
		return []*chinook.Album{}, nil
	}
	albums, err := e.repo.ListAlbums(ctx)
	if err != nil {
		return nil, err
	}
	return fuzzy(e, albums, *title, func(a *chinook.Album) string { return a.Title }), nil
}

// Artists returns every artist whose name scores strictly above the threshold
// against name, in storage order. A nil name matches nothing.
func (e *Engine) Artists(ctx context.Context, name *string) ([]*chinook.Artist, error) {
	if name == nil {
		return []*chinook.Artist{}, nil
	}
	artists, err := e.repo.ListArtists(ctx)
	if err != nil {
		return nil, err
	}
	return fuzzy(e, artists, *name, func(a *chinook.Artist) string { return a.Name }), nil
}

func exact[T any](ctx context.Context, e *Engine, kind chinook.Kind, raw any, get func(context.Context, int) (*T, error)) (*T, error) {
	id, err := ParseID(kind, raw)
	if err != nil {
		return nil, err
	}
	v, err := get(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, chinook.NewNotFoundError(kind, id)
	}
	return v, nil
}

func fuzzy[T any](e *Engine, candidates []T, query string, field func(T) string) []T {
	threshold := e.SimilarityThreshold()
	out := make([]T, 0, len(candidates))
	for _, c := range candidates {
		if similarity.Above(field(c), query, threshold) {
			out = append(out, c)
		}
	}
	e.log.Debug("fuzzy lookup", "query", query, "candidates", len(candidates), "matches", len(out), "threshold", threshold)
	return out
}
