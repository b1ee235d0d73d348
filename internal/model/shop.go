package model

// Shop is a configured shop plus its resolved place identifier.
type Shop struct {
	Index   int
	Name    string
	PlaceID string // empty until resolved
	Bias    *Bias
}

// Bias narrows a text search around a point.
type Bias struct {
	Near   string  `json:"near,omitempty"` // free text, geocoded once
	Lat    float64 `json:"lat,omitempty"`
	Lng    float64 `json:"lng,omitempty"`
	Radius int     `json:"radius,omitempty"` // meters
}

// HasPoint reports whether coordinates were supplied or already geocoded.
func (b *Bias) HasPoint() bool {
	return b != nil && (b.Lat != 0 || b.Lng != 0)
}

// RunParams holds all configuration for one polling run.
type RunParams struct {
	APIKey        string
	Language      string // details language parameter (default "de")
	Shops         []Shop
	Concurrency   int
	DelayMillis   int     // pause between resolve and details
	RateLimit     float64 // requests per second across all shops, 0 = unlimited
	SlotNumbering string  // "legacy" or "sequential"
	ProxyURL      string
	DBPath        string
	Debug         bool
}
