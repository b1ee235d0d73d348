package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/rendis/openinghours/internal/engine/hours"
	"github.com/rendis/openinghours/internal/model"
)

// APIKeyEnv overrides the apiKey from the config file.
const APIKeyEnv = "OPENINGHOURS_API_KEY"

// Config is the on-disk configuration.
type Config struct {
	APIKey        string  `json:"apiKey" validate:"required"`
	Language      string  `json:"language,omitempty"`
	Concurrency   int     `json:"concurrency,omitempty" validate:"gte=0,lte=64"`
	Delay         *int    `json:"delay,omitempty" validate:"omitempty,gte=0"` // milliseconds; 0 is allowed
	RateLimit     float64 `json:"rateLimit,omitempty" validate:"gte=0"`
	SlotNumbering string  `json:"slotNumbering,omitempty" validate:"omitempty,oneof=legacy sequential"`
	Proxy         string  `json:"proxy,omitempty" validate:"omitempty,url"`
	Shops         []Shop  `json:"shops" validate:"required,min=1,dive"`
}

// Shop is one configured shop entry.
type Shop struct {
	Name   string  `json:"name" validate:"required"`
	Near   string  `json:"near,omitempty"`
	Lat    float64 `json:"lat,omitempty" validate:"gte=-90,lte=90"`
	Lng    float64 `json:"lng,omitempty" validate:"gte=-180,lte=180"`
	Radius int     `json:"radius,omitempty" validate:"gte=0"`
}

var validate = validator.New()

// Load reads a JSON config file, applies a .env file from the working
// directory if present, and validates the result.
func Load(path string) (*Config, error) {
	// a missing .env is normal
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates config bytes. The API key environment
// variable wins over the file value.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		cfg.APIKey = key
	}
	for i := range cfg.Shops {
		cfg.Shops[i].Name = strings.TrimSpace(cfg.Shops[i].Name)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and reports them as one error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// RunParams converts the config into run parameters. Shop indices follow
// the configured order.
func (c *Config) RunParams() model.RunParams {
	p := model.RunParams{
		APIKey:        c.APIKey,
		Language:      c.Language,
		Concurrency:   c.Concurrency,
		DelayMillis:   1000,
		RateLimit:     c.RateLimit,
		SlotNumbering: c.SlotNumbering,
		ProxyURL:      c.Proxy,
	}
	if p.Language == "" {
		p.Language = "de"
	}
	if p.Concurrency == 0 {
		p.Concurrency = 4
	}
	if c.Delay != nil {
		p.DelayMillis = *c.Delay
	}
	if p.SlotNumbering == "" {
		p.SlotNumbering = hours.LegacyNumbering.String()
	}

	for i, s := range c.Shops {
		shop := model.Shop{Index: i, Name: s.Name}
		if s.Near != "" || s.Lat != 0 || s.Lng != 0 {
			shop.Bias = &model.Bias{Near: s.Near, Lat: s.Lat, Lng: s.Lng, Radius: s.Radius}
		}
		p.Shops = append(p.Shops, shop)
	}
	return p
}
