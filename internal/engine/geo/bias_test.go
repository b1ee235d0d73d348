package geo

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/openinghours/internal/model"
)

func TestLocationBias(t *testing.T) {
	assert.Equal(t, "", LocationBias(nil))
	assert.Equal(t, "", LocationBias(&model.Bias{Near: "Berlin"}))
	assert.Equal(t, "point:52.5200000,13.4050000", LocationBias(&model.Bias{Lat: 52.52, Lng: 13.405}))
	assert.Equal(t, "circle:800@52.5200000,13.4050000", LocationBias(&model.Bias{Lat: 52.52, Lng: 13.405, Radius: 800}))
	assert.Equal(t, "circle:50000@52.5200000,13.4050000", LocationBias(&model.Bias{Lat: 52.52, Lng: 13.405, Radius: 90000}))
}

func TestGeocoderLocate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Hamburg", r.URL.Query().Get("q"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		io.WriteString(w, `[{"lat":"53.5503410","lon":"10.0006540","display_name":"Hamburg"}]`)
	}))
	defer srv.Close()

	g := NewGeocoderWithURL(srv.URL, srv.Client())
	p, err := g.Locate(context.Background(), "Hamburg")
	require.NoError(t, err)
	assert.InDelta(t, 53.550341, p.Lat(), 1e-6)
	assert.InDelta(t, 10.000654, p.Lon(), 1e-6)
}

func TestGeocoderNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	_, err := NewGeocoderWithURL(srv.URL, srv.Client()).Locate(context.Background(), "Atlantis")
	assert.ErrorContains(t, err, "not found")
}

func TestResolveBias(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"lat":"48.1371","lon":"11.5754"}]`)
	}))
	defer srv.Close()
	g := NewGeocoderWithURL(srv.URL, srv.Client())

	b := &model.Bias{Near: "München", Radius: 1000}
	require.NoError(t, ResolveBias(context.Background(), g, b))
	assert.InDelta(t, 48.1371, b.Lat, 1e-9)
	assert.InDelta(t, 11.5754, b.Lng, 1e-9)

	fixed := &model.Bias{Near: "ignored", Lat: 1, Lng: 2}
	require.NoError(t, ResolveBias(context.Background(), g, fixed))
	assert.Equal(t, 1.0, fixed.Lat)

	require.NoError(t, ResolveBias(context.Background(), g, nil))
}
