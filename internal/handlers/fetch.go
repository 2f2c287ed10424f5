package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
)

// ResourceCache is the cache surface the HTTP layer depends on.
type ResourceCache interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Len() int
}

type FetchHandler struct {
	cache ResourceCache
}

func NewFetchHandler(cache ResourceCache) *FetchHandler {
	return &FetchHandler{cache: cache}
}

// GetResource serves GET /fetch?url=<key>[&path=<gjson path>].
func (h *FetchHandler) GetResource(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("url")
	if strings.TrimSpace(key) == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'url' is required", "")
		return
	}

	payload, err := h.cache.Get(r.Context(), key)
	if err != nil {
		log.WithField("key", key).WithError(err).Warn("fetch request failed")
		writeError(w, http.StatusBadGateway, "upstream fetch failed", key)
		return
	}

	if path := r.URL.Query().Get("path"); path != "" {
		res := gjson.GetBytes(payload, path)
		if !res.Exists() {
			writeError(w, http.StatusNotFound, "path matched nothing", key)
			return
		}
		payload = json.RawMessage(res.Raw)
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(payload)
}

// GetStats serves GET /stats.
func (h *FetchHandler) GetStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int{"entries": h.cache.Len()})
}

func writeError(w http.ResponseWriter, status int, msg, key string) {
	body := map[string]string{"error": msg}
	if key != "" {
		body["key"] = key
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
