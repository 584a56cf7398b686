package resultcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/rayzhou/text-toolkit/internal/domain/analyzer"
)

// ValkeyStore persists analysis responses in a Valkey-compatible database so
// replicas share one cache.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "analysis"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) Get(ctx context.Context, key string) (analyzer.Response, bool, error) {
	cmd := s.client.B().Get().Key(s.entryKey(key)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return analyzer.Response{}, false, nil
		}
		return analyzer.Response{}, false, err
	}
	var resp analyzer.Response
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return analyzer.Response{}, false, err
	}
	return resp, true, nil
}

func (s *ValkeyStore) Set(ctx context.Context, key string, resp analyzer.Response, ttl time.Duration) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.entryKey(key)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) entryKey(key string) string {
	return s.prefix + ":" + key
}

var _ analyzer.Store = (*ValkeyStore)(nil)
