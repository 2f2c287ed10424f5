package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cachedfetch/internal/api"
	"cachedfetch/internal/config"
	"cachedfetch/internal/models"
)

type recordingProducer struct {
	keys   []string
	events []models.FetchEvent
}

func (p *recordingProducer) PublishObjectAsync(key []byte, obj any) {
	p.keys = append(p.keys, string(key))
	p.events = append(p.events, obj.(models.FetchEvent))
}

func TestNewFetcher_HTTPOnlyWithoutRedis(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"path":"` + r.URL.Path + `"}`))
	}))
	defer srv.Close()

	cfg := &config.Config{BaseURL: srv.URL, HTTPTimeout: time.Second, RedisPrefix: "redis:"}
	f := NewFetcher(cfg, nil)
	require.IsType(t, &api.HTTPFetcher[json.RawMessage]{}, f)

	got, err := f.Fetch(context.Background(), "/users/1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"path":"/users/1"}`, string(got))
}

func TestPublishFetchEvent(t *testing.T) {
	p := &recordingProducer{}
	notify := publishFetchEvent(p)

	before := time.Now().UTC()
	notify("/users/1", json.RawMessage(`{"id":1}`))

	require.Len(t, p.events, 1)
	assert.Equal(t, []string{"/users/1"}, p.keys)
	ev := p.events[0]
	assert.Equal(t, "/users/1", ev.Key)
	assert.JSONEq(t, `{"id":1}`, string(ev.Payload))
	assert.False(t, ev.FetchedAt.Before(before))
}

func TestInitBootstrap(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	cfg := &config.Config{BaseURL: srv.URL, HTTPTimeout: time.Second, Coalesce: true}
	app := InitBootstrap(cfg, nil, nil)
	require.NotNil(t, app.Handler)

	for range 2 {
		_, err := app.Cache.Get(context.Background(), "/x")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, app.Cache.Len())
}
