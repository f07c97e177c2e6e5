package reconcile

import (
	"context"
	"errors"
)

// Source says how a reference was satisfied.
type Source string

const (
	SourceLocal       Source = "local"
	SourceFetched     Source = "fetched"
	SourcePlaceholder Source = "placeholder"
)

var errMissingReference = errors.New("missing_reference")

// Outcome is the result of resolving one reference. Err is diagnostic only
// and is set when Source is SourcePlaceholder.
type Outcome[Ref any] struct {
	Value  Ref
	Source Source
	Err    error
}

// Resolve looks id up in index, falls back to fetchByID on a miss, and
// substitutes placeholder() when the fetch fails. It never returns an error.
// Ids <= 0 go straight to the placeholder.
func Resolve[Ref any](
	ctx context.Context,
	id int64,
	index map[int64]Ref,
	fetchByID func(context.Context, int64) (Ref, error),
	placeholder func() Ref,
) Outcome[Ref] {
	if ref, ok := index[id]; ok {
		return Outcome[Ref]{Value: ref, Source: SourceLocal}
	}
	if id <= 0 || fetchByID == nil {
		return Outcome[Ref]{Value: placeholder(), Source: SourcePlaceholder, Err: errMissingReference}
	}
	ref, err := fetchByID(ctx, id)
	if err != nil {
		return Outcome[Ref]{Value: placeholder(), Source: SourcePlaceholder, Err: err}
	}
	return Outcome[Ref]{Value: ref, Source: SourceFetched}
}
