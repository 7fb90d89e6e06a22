package middleware

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/guttosm/measure-pricing-service/internal/service/cache"
)

// cachedResponse stores a replayable HTTP response.
type cachedResponse struct {
	StatusCode int               `msgpack:"status"`
	Headers    map[string]string `msgpack:"headers"`
	Body       []byte            `msgpack:"body"`
}

// responseStore keeps msgpack-encoded responses in a byte cache. Expiry is
// the cache's TTL.
type responseStore struct {
	cache cache.Cache
}

func (s responseStore) get(key string) (*cachedResponse, bool) {
	data, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	var resp cachedResponse
	if err := msgpack.Unmarshal(data, &resp); err != nil {
		s.cache.Invalidate(key)
		return nil, false
	}
	return &resp, true
}

func (s responseStore) set(key string, resp *cachedResponse) error {
	data, err := msgpack.Marshal(resp)
	if err != nil {
		return err
	}
	s.cache.Set(key, data)
	return nil
}
