package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv(APIKeyEnv, "")

	cfg, err := Parse([]byte(`{"apiKey":"abc","shops":[{"name":" Bäckerei Müller "},{"name":"Kiosk","near":"Berlin","radius":500}]}`))
	require.NoError(t, err)

	p := cfg.RunParams()
	assert.Equal(t, "abc", p.APIKey)
	assert.Equal(t, "de", p.Language)
	assert.Equal(t, 4, p.Concurrency)
	assert.Equal(t, 1000, p.DelayMillis)
	assert.Equal(t, "legacy", p.SlotNumbering)

	require.Len(t, p.Shops, 2)
	assert.Equal(t, 0, p.Shops[0].Index)
	assert.Equal(t, "Bäckerei Müller", p.Shops[0].Name)
	assert.Nil(t, p.Shops[0].Bias)
	assert.Equal(t, 1, p.Shops[1].Index)
	require.NotNil(t, p.Shops[1].Bias)
	assert.Equal(t, "Berlin", p.Shops[1].Bias.Near)
	assert.Equal(t, 500, p.Shops[1].Bias.Radius)
}

func TestParseExplicitZeroDelay(t *testing.T) {
	t.Setenv(APIKeyEnv, "")

	cfg, err := Parse([]byte(`{"apiKey":"k","delay":0,"shops":[{"name":"a"}]}`))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.RunParams().DelayMillis)

	cfg, err = Parse([]byte(`{"apiKey":"k","delay":250,"shops":[{"name":"a"}]}`))
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.RunParams().DelayMillis)
}

func TestParseEnvOverridesKey(t *testing.T) {
	t.Setenv(APIKeyEnv, "from-env")

	cfg, err := Parse([]byte(`{"shops":[{"name":"a"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.APIKey)
}

func TestParseValidation(t *testing.T) {
	t.Setenv(APIKeyEnv, "")

	cases := map[string]string{
		"missing key":    `{"shops":[{"name":"a"}]}`,
		"no shops":       `{"apiKey":"k","shops":[]}`,
		"blank name":     `{"apiKey":"k","shops":[{"name":"  "}]}`,
		"bad numbering":  `{"apiKey":"k","slotNumbering":"random","shops":[{"name":"a"}]}`,
		"bad latitude":   `{"apiKey":"k","shops":[{"name":"a","lat":123}]}`,
		"negative delay": `{"apiKey":"k","delay":-1,"shops":[{"name":"a"}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(body))
			assert.ErrorContains(t, err, "invalid config")
		})
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte(`{"apiKey":`))
	assert.ErrorContains(t, err, "parsing config")
}

func TestLoadFile(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"apiKey":"k","language":"en","slotNumbering":"sequential","shops":[{"name":"a"}]}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	p := cfg.RunParams()
	assert.Equal(t, "en", p.Language)
	assert.Equal(t, "sequential", p.SlotNumbering)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "reading config")
}
