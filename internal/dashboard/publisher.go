package dashboard

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/wonny/happiness/internal/contracts"
)

// Publisher receives every freshly built dashboard
type Publisher interface {
	Publish(ctx context.Context, d *contracts.Dashboard) error
}

// PublisherFunc adapts a function to Publisher
type PublisherFunc func(ctx context.Context, d *contracts.Dashboard) error

// Publish calls f
func (f PublisherFunc) Publish(ctx context.Context, d *contracts.Dashboard) error {
	return f(ctx, d)
}

// Fanout publishes to every publisher, joining their errors
type Fanout []Publisher

// Publish delivers d to all publishers even if some fail
func (f Fanout) Publish(ctx context.Context, d *contracts.Dashboard) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Latest keeps the most recently published dashboard
type Latest struct {
	current atomic.Pointer[contracts.Dashboard]
}

// Publish stores d unless a newer version is already held
func (l *Latest) Publish(_ context.Context, d *contracts.Dashboard) error {
	for {
		old := l.current.Load()
		if old != nil && old.Version > d.Version {
			return nil
		}
		if l.current.CompareAndSwap(old, d) {
			return nil
		}
	}
}

// Get returns the held dashboard, nil if nothing was published yet
func (l *Latest) Get() *contracts.Dashboard {
	return l.current.Load()
}
