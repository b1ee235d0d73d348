package places

import (
	"context"

	"github.com/rs/zerolog"
)

// Resolver turns a shop name into a place identifier.
type Resolver struct {
	client *Client
	log    zerolog.Logger
}

func NewResolver(client *Client, log zerolog.Logger) *Resolver {
	return &Resolver{client: client, log: log}
}

// Resolve returns the first candidate's place_id. Every failure is logged at
// info level and reported as ok=false; nothing is returned to the caller.
func (r *Resolver) Resolve(ctx context.Context, shopName, locationBias string) (string, bool) {
	resp, err := r.client.FindPlace(ctx, shopName, locationBias)
	if err != nil {
		r.log.Info().Err(err).Str("shop", shopName).Msg("place lookup failed")
		return "", false
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].PlaceID == "" {
		r.log.Info().Str("shop", shopName).Msg("No results for: " + shopName)
		return "", false
	}

	placeID := resp.Candidates[0].PlaceID
	r.log.Debug().Str("shop", shopName).Str("place_id", placeID).
		Int("candidates", len(resp.Candidates)).Msg("place resolved")
	return placeID, true
}
