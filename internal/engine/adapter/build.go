package adapter

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/rendis/openinghours/internal/engine/geo"
	"github.com/rendis/openinghours/internal/engine/hours"
	"github.com/rendis/openinghours/internal/engine/places"
	"github.com/rendis/openinghours/internal/engine/state"
	"github.com/rendis/openinghours/internal/model"
)

// Build wires a Places client, resolver, normalizer and geocoder from run
// parameters. Extra client options are appended last (tests, base URL).
func Build(p model.RunParams, store state.Store, log zerolog.Logger, clientOpts ...places.Option) (*Adapter, error) {
	numbering, err := hours.ParseNumbering(p.SlotNumbering)
	if err != nil {
		return nil, err
	}

	opts := []places.Option{
		places.WithLanguage(p.Language),
		places.WithRateLimit(p.RateLimit),
		places.WithProxy(p.ProxyURL),
	}
	client := places.NewClient(p.APIKey, append(opts, clientOpts...)...)

	lang := p.Language
	if lang == "" {
		lang = places.DefaultLanguage
	}
	norm := NewNormalizer(client, store, hours.LocaleFor(lang), numbering, log)

	return New(places.NewResolver(client, log), norm, store, log,
		WithConcurrency(p.Concurrency),
		WithDelay(time.Duration(p.DelayMillis)*time.Millisecond),
		WithLocator(geo.NewGeocoder()),
	), nil
}
