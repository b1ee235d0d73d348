package places

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithBaseURL(srv.URL), WithHTTPClient(srv.Client())}, opts...)
	return NewClient("test-key", opts...)
}

func TestFindPlaceQueryParams(t *testing.T) {
	var got map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/findplacefromtext/json", r.URL.Path)
		q := r.URL.Query()
		got = map[string]string{
			"input":        q.Get("input"),
			"inputtype":    q.Get("inputtype"),
			"fields":       q.Get("fields"),
			"key":          q.Get("key"),
			"locationbias": q.Get("locationbias"),
		}
		io.WriteString(w, `{"candidates":[{"place_id":"ChIJ1"}],"status":"OK"}`)
	})

	resp, err := c.FindPlace(context.Background(), "Bäckerei Müller Berlin", "")
	require.NoError(t, err)
	require.Len(t, resp.Candidates, 1)
	assert.Equal(t, "ChIJ1", resp.Candidates[0].PlaceID)

	assert.Equal(t, map[string]string{
		"input":        "Bäckerei Müller Berlin",
		"inputtype":    "textquery",
		"fields":       "place_id",
		"key":          "test-key",
		"locationbias": "",
	}, got)
}

func TestFindPlaceLocationBias(t *testing.T) {
	var bias string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		bias = r.URL.Query().Get("locationbias")
		io.WriteString(w, `{"candidates":[],"status":"ZERO_RESULTS"}`)
	})

	resp, err := c.FindPlace(context.Background(), "x", "circle:500@52.5200000,13.4050000")
	require.NoError(t, err)
	assert.Empty(t, resp.Candidates)
	assert.Equal(t, "circle:500@52.5200000,13.4050000", bias)
}

func TestDetailsQueryParams(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/details/json", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "ChIJ1", q.Get("place_id"))
		assert.Equal(t, "formatted_address,name,permanently_closed,place_id,type,opening_hours,website,international_phone_number,rating", q.Get("fields"))
		assert.Equal(t, "test-key", q.Get("key"))
		assert.Equal(t, "de", q.Get("language"))
		io.WriteString(w, `{"result":{"name":"Shop","rating":4.2},"status":"OK"}`)
	})

	resp, err := c.Details(context.Background(), "ChIJ1")
	require.NoError(t, err)
	assert.Contains(t, resp.Result, "name")
	assert.Contains(t, resp.Result, "rating")
	assert.NotContains(t, resp.Result, "website")
	assert.EqualValues(t, 1, c.Requests())
}

func TestDetailsLanguageOption(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "en", r.URL.Query().Get("language"))
		io.WriteString(w, `{"status":"OK"}`)
	}, WithLanguage("en"))

	_, err := c.Details(context.Background(), "ChIJ1")
	require.NoError(t, err)
}

func TestClientHTTPStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	})

	_, err := c.FindPlace(context.Background(), "x", "")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	assert.Empty(t, se.APIStatus)
}

func TestClientAPIStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid."}`)
	})

	_, err := c.Details(context.Background(), "x")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "REQUEST_DENIED", se.APIStatus)
	assert.Contains(t, se.Error(), "API key is invalid")
}

func TestClientMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"candidates":[`)
	})

	_, err := c.FindPlace(context.Background(), "x", "")
	assert.ErrorContains(t, err, "decoding response")
}

func TestClientNoRetry(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.FindPlace(context.Background(), "x", "")
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestResolverFirstCandidate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status":"OK","candidates":[{"place_id":"first"},{"place_id":"second"}]}`)
	})
	r := NewResolver(c, zerolog.Nop())

	id, ok := r.Resolve(context.Background(), "Shop", "")
	assert.True(t, ok)
	assert.Equal(t, "first", id)
}

func TestResolverFieldOrderIrrelevant(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"candidates":[{"place_id":"first"},{"place_id":"second"}],"status":"OK","extra":{"a":1}}`)
	})
	r := NewResolver(c, zerolog.Nop())

	id, ok := r.Resolve(context.Background(), "Shop", "")
	assert.True(t, ok)
	assert.Equal(t, "first", id)
}

func TestResolverNoCandidates(t *testing.T) {
	for name, body := range map[string]string{
		"empty":  `{"candidates":[],"status":"ZERO_RESULTS"}`,
		"absent": `{"status":"ZERO_RESULTS"}`,
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, body)
			})
			r := NewResolver(c, zerolog.Nop())

			id, ok := r.Resolve(context.Background(), "Nowhere", "")
			assert.False(t, ok)
			assert.Empty(t, id)
		})
	}
}

func TestResolverSwallowsTransportFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	r := NewResolver(c, zerolog.Nop())

	id, ok := r.Resolve(context.Background(), "Shop", "")
	assert.False(t, ok)
	assert.Empty(t, id)
}
