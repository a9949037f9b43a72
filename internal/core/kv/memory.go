package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/colonyops/tinydiff/pkg/kv"
)

// Memory is a KV held in process memory. Values round-trip through JSON so
// behavior matches the SQLite store.
type Memory struct {
	data *kv.Store[string, json.RawMessage]
}

var _ KV = (*Memory)(nil)

// NewMemory returns an empty in-memory KV.
func NewMemory() *Memory {
	return &Memory{data: kv.New[string, json.RawMessage]()}
}

func (m *Memory) Get(ctx context.Context, key string, dest any) error {
	raw, ok := m.data.Get(key)
	if !ok {
		return fmt.Errorf("kv get %q: %w", key, ErrNotFound)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("kv get %q unmarshal: %w", key, err)
	}
	return nil
}

func (m *Memory) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv set %q marshal: %w", key, err)
	}
	m.data.Set(key, raw)
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.data.Delete(key)
	return nil
}

func (m *Memory) Has(ctx context.Context, key string) (bool, error) {
	_, ok := m.data.Get(key)
	return ok, nil
}

func (m *Memory) ListKeys(ctx context.Context) ([]string, error) {
	keys := m.data.Keys()
	sort.Strings(keys)
	return keys, nil
}
