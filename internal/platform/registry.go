package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kain88-de/reviewr/internal/activity"
	"github.com/kain88-de/reviewr/internal/errlog"
)

// Registry owns the registered adapters, keyed by their stable id, and
// coordinates concurrent fetches across them. Adapters are not shared
// outside the registry.
type Registry struct {
	mu        sync.RWMutex
	platforms map[string]Platform
	errors    *errlog.Log
	logger    *slog.Logger
}

// NewRegistry creates an empty registry. Adapter failures are appended to
// errors (which may be nil) and logged to logger.
func NewRegistry(errors *errlog.Log, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		platforms: make(map[string]Platform),
		errors:    errors,
		logger:    logger,
	}
}

// Register adds p, replacing any adapter with the same id.
func (r *Registry) Register(p Platform) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.platforms[p.ID()] = p
}

// Get returns the adapter with the given id, or nil.
func (r *Registry) Get(id string) Platform {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.platforms[id]
}

// List returns the ids of all registered adapters, sorted alphabetically.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.platforms))
	for id := range r.platforms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// All returns every registered adapter, sorted by id.
func (r *Registry) All() []Platform {
	ids := r.List()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Platform, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.platforms[id])
	}
	return out
}

// ConfiguredAdapters returns the adapters whose IsConfigured is true.
// Callers must not depend on the order.
func (r *Registry) ConfiguredAdapters() []Platform {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Platform
	for _, p := range r.platforms {
		if p.IsConfigured() {
			out = append(out, p)
		}
	}
	return out
}

// NewPlatform returns the adapter registered under id, or an error listing
// the available ids.
func (r *Registry) NewPlatform(id string) (Platform, error) {
	p := r.Get(id)
	if p == nil {
		return nil, fmt.Errorf("unknown platform %q (available: %v)", id, r.List())
	}
	return p, nil
}

// Clear removes all registered adapters.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.platforms = make(map[string]Platform)
}

// FetchAll fetches detailed activities from every configured adapter
// concurrently. A failing adapter is logged and omitted from the result;
// it never aborts the others. Cancelling ctx stops in-flight requests and
// returns whatever completed.
func (r *Registry) FetchAll(ctx context.Context, user string, days int) map[string]activity.DetailedActivities {
	return r.FetchAllWithProgress(ctx, user, days, nil)
}

// FetchAllWithProgress is FetchAll that also reports Started and Completed
// events per adapter and a final AllCompleted on progress. Sends block, so
// progress must be drained or buffered; a nil channel disables reporting.
func (r *Registry) FetchAllWithProgress(ctx context.Context, user string, days int, progress chan<- Progress) map[string]activity.DetailedActivities {
	adapters := r.ConfiguredAdapters()
	results := make(map[string]activity.DetailedActivities, len(adapters))
	var mu sync.Mutex

	send := func(ev Progress) {
		if progress != nil {
			progress <- ev
		}
	}

	var g errgroup.Group
	for _, p := range adapters {
		g.Go(func() error {
			id := p.ID()
			send(Started(id))
			r.logger.Info("fetching activities", "platform", id, "user", user, "days", days)

			d, err := p.DetailedActivities(ctx, user, days)
			if err != nil {
				r.recordFailure(id, "fetch_all", user, err)
				send(Failed(id, err))
				return nil
			}

			mu.Lock()
			results[id] = d
			mu.Unlock()
			r.logger.Info("fetched activities", "platform", id, "items", d.Total())
			send(Succeeded(id, d.Total()))
			return nil
		})
	}
	_ = g.Wait()
	send(AllCompleted())
	return results
}

// TestAllConnections probes every registered adapter concurrently.
// Unconfigured adapters report NotConfigured; a probe error becomes an
// Error status.
func (r *Registry) TestAllConnections(ctx context.Context) map[string]activity.ConnectionStatus {
	adapters := r.All()
	results := make(map[string]activity.ConnectionStatus, len(adapters))
	var mu sync.Mutex

	var g errgroup.Group
	for _, p := range adapters {
		g.Go(func() error {
			status := activity.NotConfigured()
			if p.IsConfigured() {
				s, err := p.TestConnection(ctx)
				if err != nil {
					r.recordFailure(p.ID(), "test_connection", "", err)
					s = activity.Error(err.Error())
				}
				status = s
			}
			mu.Lock()
			results[p.ID()] = status
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// recordFailure logs an adapter failure and appends it to the error log
// unless the adapter already did so.
func (r *Registry) recordFailure(id, operation, user string, err error) {
	if errors.Is(err, context.Canceled) {
		r.logger.Warn("fetch cancelled", "platform", id)
		return
	}
	r.logger.Error("platform failed", "platform", id, "operation", operation, "error", err)
	if IsLogged(err) {
		return
	}
	if aerr := r.errors.Append(Record(id, operation, user, err)); aerr != nil {
		r.logger.Warn("failed to write error log", "error", aerr)
	}
}
