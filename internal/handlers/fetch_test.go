package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCache struct {
	data  map[string]string
	calls []string
}

func (c *stubCache) Get(_ context.Context, key string) (json.RawMessage, error) {
	c.calls = append(c.calls, key)
	v, ok := c.data[key]
	if !ok {
		return nil, errors.New("upstream 503")
	}
	return json.RawMessage(v), nil
}

func (c *stubCache) Len() int { return len(c.data) }

func serve(h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestGetResource(t *testing.T) {
	cache := &stubCache{data: map[string]string{
		"/users/1": `{"id":1,"name":"ada","tags":["x","y"]}`,
	}}
	h := NewFetchHandler(cache)

	tests := []struct {
		name     string
		target   string
		status   int
		wantBody string
	}{
		{name: "whole payload", target: "/fetch?url=/users/1", status: http.StatusOK, wantBody: `{"id":1,"name":"ada","tags":["x","y"]}`},
		{name: "projected", target: "/fetch?url=/users/1&path=name", status: http.StatusOK, wantBody: `"ada"`},
		{name: "projected array", target: "/fetch?url=/users/1&path=tags.1", status: http.StatusOK, wantBody: `"y"`},
		{name: "path misses", target: "/fetch?url=/users/1&path=email", status: http.StatusNotFound, wantBody: `{"error":"path matched nothing","key":"/users/1"}`},
		{name: "missing url", target: "/fetch", status: http.StatusBadRequest, wantBody: `{"error":"query parameter 'url' is required"}`},
		{name: "upstream failure", target: "/fetch?url=/users/9", status: http.StatusBadGateway, wantBody: `{"error":"upstream fetch failed","key":"/users/9"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h.GetResource, tt.target)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}

	assert.NotContains(t, cache.calls, "", "missing url must not reach the cache")
}

func TestGetStats(t *testing.T) {
	h := NewFetchHandler(&stubCache{data: map[string]string{"a": "1", "b": "2"}})

	rec := serve(h.GetStats, "/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"entries":2}`, rec.Body.String())
}
