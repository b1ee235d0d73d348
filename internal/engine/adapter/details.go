package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/goodsign/monday"
	"github.com/rs/zerolog"

	"github.com/rendis/openinghours/internal/engine/hours"
	"github.com/rendis/openinghours/internal/engine/places"
	"github.com/rendis/openinghours/internal/engine/state"
	"github.com/rendis/openinghours/internal/model"
)

// DetailsFetcher is the details half of the Places client.
type DetailsFetcher interface {
	Details(ctx context.Context, placeID string) (*model.DetailsResponse, error)
}

// Normalizer fetches place details and flattens them into states under the
// shop's index.
type Normalizer struct {
	fetcher   DetailsFetcher
	store     state.Store
	locale    monday.Locale
	numbering hours.Numbering
	log       zerolog.Logger
}

func NewNormalizer(fetcher DetailsFetcher, store state.Store, locale monday.Locale, numbering hours.Numbering, log zerolog.Logger) *Normalizer {
	return &Normalizer{
		fetcher:   fetcher,
		store:     store,
		locale:    locale,
		numbering: numbering,
		log:       log,
	}
}

// FetchAndStore writes every present details field for placeID. A response
// without a result body is a no-op. Returned errors are informational; states
// written before the failure stay in place.
func (n *Normalizer) FetchAndStore(ctx context.Context, index int, placeID string) error {
	resp, err := n.fetcher.Details(ctx, placeID)
	if err != nil {
		return fmt.Errorf("fetching details: %w", err)
	}
	if resp == nil || len(resp.Result) == 0 {
		n.log.Debug().Int("shop", index).Str("place_id", placeID).Msg("details without result")
		return nil
	}

	root := strconv.Itoa(index)
	result := resp.Result

	for _, f := range places.ScalarFields {
		raw, ok := result[f.Name]
		if !ok {
			continue
		}
		var val any
		if err := json.Unmarshal(raw, &val); err != nil {
			return fmt.Errorf("decoding %s: %w", f.Name, err)
		}
		if err := n.write(ctx, state.Join(root, f.Name), state.ReadOnlyState(f.Name, f.Type), val); err != nil {
			return err
		}
	}

	raw, ok := result["opening_hours"]
	if !ok {
		return nil
	}
	var oh model.OpeningHours
	if err := json.Unmarshal(raw, &oh); err != nil {
		return fmt.Errorf("decoding opening_hours: %w", err)
	}
	// key presence, so an explicit null is still written
	var present map[string]json.RawMessage
	if err := json.Unmarshal(raw, &present); err != nil {
		return fmt.Errorf("decoding opening_hours: %w", err)
	}

	if _, ok := present["open_now"]; ok {
		var val any
		if oh.OpenNow != nil {
			val = *oh.OpenNow
		}
		if err := n.write(ctx, state.Join(root, "open_now"), state.ReadOnlyState("open_now", "boolean"), val); err != nil {
			return err
		}
	}
	if _, ok := present["weekday_text"]; ok {
		var val any
		if oh.WeekdayText != nil {
			val = oh.WeekdayText
		}
		if err := n.write(ctx, state.Join(root, "weekday_text"), state.ReadOnlyState("weekday_text", "array"), val); err != nil {
			return err
		}
	}
	if oh.Periods != nil {
		if err := n.storeSchedule(ctx, root, oh.Periods); err != nil {
			return err
		}
	}
	return nil
}

func (n *Normalizer) storeSchedule(ctx context.Context, root string, periods []model.Period) error {
	channel := state.Join(root, "periods")
	if err := n.store.EnsureObject(ctx, channel, state.Channel("periods")); err != nil {
		return fmt.Errorf("creating %s: %w", channel, err)
	}

	sched := hours.Flatten(periods, n.locale, n.numbering)

	for _, day := range sched {
		dayID := state.Join(channel, day.Name)
		if err := n.store.EnsureObject(ctx, dayID, state.Channel(day.Name)); err != nil {
			return fmt.Errorf("creating %s: %w", dayID, err)
		}
		open := state.ReadOnlyState("open", "boolean")
		open.Common.Def = false
		if err := n.store.EnsureObject(ctx, state.Join(dayID, "open"), open); err != nil {
			return fmt.Errorf("creating %s.open: %w", dayID, err)
		}
	}

	for _, day := range sched {
		dayID := state.Join(channel, day.Name)
		for _, slot := range day.Slots {
			name := strconv.Itoa(slot.Index)
			if err := n.store.EnsureObject(ctx, state.Join(dayID, name), state.ReadOnlyState(name, "string")); err != nil {
				return fmt.Errorf("creating %s.%s: %w", dayID, name, err)
			}
			if err := n.store.SetState(ctx, state.Join(dayID, "open"), true, true); err != nil {
				return fmt.Errorf("writing %s.open: %w", dayID, err)
			}
			if err := n.store.SetState(ctx, state.Join(dayID, name), slot.Range, true); err != nil {
				return fmt.Errorf("writing %s.%s: %w", dayID, name, err)
			}
		}
	}
	return nil
}

func (n *Normalizer) write(ctx context.Context, id string, obj state.Object, val any) error {
	if err := n.store.EnsureObject(ctx, id, obj); err != nil {
		return fmt.Errorf("creating %s: %w", id, err)
	}
	if err := n.store.SetState(ctx, id, val, true); err != nil {
		return fmt.Errorf("writing %s: %w", id, err)
	}
	return nil
}
