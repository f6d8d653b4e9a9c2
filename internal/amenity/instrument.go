package amenity

import (
	"context"
	"time"
)

// FetchObserver receives the outcome of every fetch made through Instrument.
type FetchObserver interface {
	ObserveFetch(category Category, elapsed time.Duration, err error)
}

type instrumented struct {
	next     Provider
	observer FetchObserver
}

// Instrument wraps p so that each fetch is reported to observer.
func Instrument(p Provider, observer FetchObserver) Provider {
	if observer == nil {
		return p
	}
	return &instrumented{next: p, observer: observer}
}

func (i *instrumented) FetchAmenities(ctx context.Context, category Category) ([]Amenity, error) {
	start := time.Now()
	list, err := i.next.FetchAmenities(ctx, category)
	i.observer.ObserveFetch(category, time.Since(start), err)
	return list, err
}
