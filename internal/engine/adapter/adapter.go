package adapter

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/rendis/openinghours/internal/engine/geo"
	"github.com/rendis/openinghours/internal/engine/state"
	"github.com/rendis/openinghours/internal/model"
)

// DefaultDelay separates a fresh lookup from the details request.
const DefaultDelay = time.Second

// Resolver turns a shop name into a place identifier.
type Resolver interface {
	Resolve(ctx context.Context, shopName, locationBias string) (string, bool)
}

type Stats struct {
	ShopsTotal    atomic.Int64
	ShopsDone     atomic.Int64
	Cached        atomic.Int64 // identifier already stored, lookup skipped
	Resolved      atomic.Int64
	NoMatch       atomic.Int64
	DetailsStored atomic.Int64
	Errors        atomic.Int64
}

// Outcome of one shop's pipeline.
type Outcome int

const (
	OutcomeStored Outcome = iota
	OutcomeNoMatch
	OutcomeFailed
)

// ShopResult is reported once per shop when its pipeline finishes.
type ShopResult struct {
	Shop    model.Shop
	Cached  bool
	Outcome Outcome
	Err     error
}

// RunOptions provides optional hooks for a run.
type RunOptions struct {
	// OnShop is called from the shop's goroutine when its pipeline ends.
	OnShop func(ShopResult)
	// Stats allows passing an external Stats object for live progress.
	Stats *Stats
}

// Adapter runs the resolve-then-details pipeline for every configured shop.
type Adapter struct {
	resolver    Resolver
	normalizer  *Normalizer
	store       state.Store
	locator     geo.Locator
	log         zerolog.Logger
	concurrency int
	delay       time.Duration
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithConcurrency bounds how many shops run at once.
func WithConcurrency(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithDelay overrides the pause between a fresh lookup and details.
func WithDelay(d time.Duration) Option {
	return func(a *Adapter) {
		if d >= 0 {
			a.delay = d
		}
	}
}

// WithLocator enables geocoding of shops configured with a "near" bias.
func WithLocator(l geo.Locator) Option {
	return func(a *Adapter) {
		a.locator = l
	}
}

func New(resolver Resolver, normalizer *Normalizer, store state.Store, log zerolog.Logger, opts ...Option) *Adapter {
	a := &Adapter{
		resolver:    resolver,
		normalizer:  normalizer,
		store:       store,
		log:         log,
		concurrency: 4,
		delay:       DefaultDelay,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run processes every shop once. Shops run concurrently with each other; a
// shop's own steps are strictly sequential. One shop's failure never stops
// the others. The returned error is only ever ctx.Err().
func (a *Adapter) Run(ctx context.Context, shops []model.Shop, opts *RunOptions) (*Stats, error) {
	if opts == nil {
		opts = &RunOptions{}
	}

	stats := opts.Stats
	if stats == nil {
		stats = &Stats{}
	}
	stats.ShopsTotal.Store(int64(len(shops)))

	var wg sync.WaitGroup
	sem := make(chan struct{}, a.concurrency)

	for _, shop := range shops {
		select {
		case <-ctx.Done():
			wg.Wait()
			return stats, ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(s model.Shop) {
			defer wg.Done()
			defer func() { <-sem }()

			res := a.processShop(ctx, s, stats)
			stats.ShopsDone.Add(1)
			if opts.OnShop != nil {
				opts.OnShop(res)
			}
		}(shop)
	}

	wg.Wait()
	return stats, ctx.Err()
}

func (a *Adapter) processShop(ctx context.Context, shop model.Shop, stats *Stats) ShopResult {
	log := a.log.With().Int("shop", shop.Index).Str("name", shop.Name).Logger()
	res := ShopResult{Shop: shop}

	fail := func(err error, msg string) ShopResult {
		stats.Errors.Add(1)
		log.Info().Err(err).Msg(msg)
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}

	idKey := state.Join(strconv.Itoa(shop.Index), "place_id")
	obj := state.ReadOnlyState("place_id", "string")
	obj.Common.Role = "id"
	if err := a.store.EnsureObject(ctx, idKey, obj); err != nil {
		return fail(err, "creating place_id object failed")
	}

	placeID, err := a.storedPlaceID(ctx, idKey)
	if err != nil {
		return fail(err, "reading place_id failed")
	}

	if placeID != "" {
		res.Cached = true
		stats.Cached.Add(1)
	} else {
		if shop.Bias != nil && a.locator != nil {
			if err := geo.ResolveBias(ctx, a.locator, shop.Bias); err != nil {
				log.Info().Err(err).Msg("location bias ignored")
			}
		}

		id, ok := a.resolver.Resolve(ctx, shop.Name, geo.LocationBias(shop.Bias))
		if !ok {
			stats.NoMatch.Add(1)
			res.Outcome = OutcomeNoMatch
			return res
		}
		if err := a.store.SetState(ctx, idKey, id, true); err != nil {
			return fail(err, "storing place_id failed")
		}
		stats.Resolved.Add(1)
		placeID = id

		if a.delay > 0 {
			select {
			case <-ctx.Done():
				return fail(ctx.Err(), "run cancelled")
			case <-time.After(a.delay):
			}
		}
	}

	res.Shop.PlaceID = placeID
	if err := a.normalizer.FetchAndStore(ctx, shop.Index, placeID); err != nil {
		return fail(err, "storing details failed")
	}
	stats.DetailsStored.Add(1)
	log.Debug().Str("place_id", placeID).Bool("cached", res.Cached).Msg("details stored")
	res.Outcome = OutcomeStored
	return res
}

// storedPlaceID returns "" when no usable identifier is stored.
func (a *Adapter) storedPlaceID(ctx context.Context, id string) (string, error) {
	st, err := a.store.GetState(ctx, id)
	if err != nil || st == nil {
		return "", err
	}
	s, _ := st.Val.(string)
	return s, nil
}
