package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/paulmach/orb"
)

const nominatimURL = "https://nominatim.openstreetmap.org/search"

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocoder resolves free-text locations through OSM Nominatim.
type Geocoder struct {
	http    *http.Client
	baseURL string
}

func NewGeocoder() *Geocoder {
	return &Geocoder{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: nominatimURL,
	}
}

// NewGeocoderWithURL is NewGeocoder against another Nominatim instance.
func NewGeocoderWithURL(baseURL string, hc *http.Client) *Geocoder {
	g := NewGeocoder()
	g.baseURL = baseURL
	if hc != nil {
		g.http = hc
	}
	return g
}

// Locate returns the center point of the best match for q.
func (g *Geocoder) Locate(ctx context.Context, q string) (orb.Point, error) {
	u := g.baseURL + "?" + url.Values{
		"q":      {q},
		"format": {"json"},
		"limit":  {"1"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return orb.Point{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "openinghours/0.1 (shop opening hours poller)")

	resp, err := g.http.Do(req)
	if err != nil {
		return orb.Point{}, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return orb.Point{}, fmt.Errorf("geocoding returned status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return orb.Point{}, fmt.Errorf("decoding geocoding response: %w", err)
	}
	if len(results) == 0 {
		return orb.Point{}, fmt.Errorf("location %q not found", q)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("parsing latitude %q: %w", results[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("parsing longitude %q: %w", results[0].Lon, err)
	}

	return orb.Point{lng, lat}, nil // orb.Point is [lng, lat]
}
