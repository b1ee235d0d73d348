package geo

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/rendis/openinghours/internal/model"
)

// maxBiasRadius is the largest circle radius the Places API accepts, in meters.
const maxBiasRadius = 50000

// BiasPoint returns the configured bias coordinates as an orb.Point.
func BiasPoint(b *model.Bias) (orb.Point, bool) {
	if !b.HasPoint() {
		return orb.Point{}, false
	}
	return orb.Point{b.Lng, b.Lat}, true
}

// LocationBias encodes a bias for the findplacefromtext locationbias
// parameter. It returns "" when the shop has no usable point.
func LocationBias(b *model.Bias) string {
	p, ok := BiasPoint(b)
	if !ok {
		return ""
	}
	if b.Radius <= 0 {
		return fmt.Sprintf("point:%.7f,%.7f", p.Lat(), p.Lon())
	}
	radius := b.Radius
	if radius > maxBiasRadius {
		radius = maxBiasRadius
	}
	return fmt.Sprintf("circle:%d@%.7f,%.7f", radius, p.Lat(), p.Lon())
}

// Locator resolves a free-text location to a point.
type Locator interface {
	Locate(ctx context.Context, q string) (orb.Point, error)
}

// ResolveBias fills Lat/Lng from Near when only a place name was configured.
// Shops that already carry coordinates are left alone.
func ResolveBias(ctx context.Context, loc Locator, b *model.Bias) error {
	if b == nil || b.HasPoint() || b.Near == "" {
		return nil
	}
	p, err := loc.Locate(ctx, b.Near)
	if err != nil {
		return fmt.Errorf("geocoding %q: %w", b.Near, err)
	}
	b.Lat, b.Lng = p.Lat(), p.Lon()
	return nil
}
