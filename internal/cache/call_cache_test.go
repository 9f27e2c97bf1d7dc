package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClareAI/astra-outbound-caller/internal/domain"
	"github.com/ClareAI/astra-outbound-caller/pkg/redis"
)

type memoryRedis struct {
	values map[string]string
	ttls   map[string]time.Duration
	err    error
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryRedis) GenerateKey(keyType redis.KeyType, identifier string) string {
	return redis.GenerateKey(keyType, identifier)
}

func (m *memoryRedis) GetValue(ctx context.Context, key string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.values[key]
	if !ok {
		return "", redis.ErrKeyNotExist
	}
	return v, nil
}

func (m *memoryRedis) SetValue(ctx context.Context, key string, value string, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memoryRedis) DelValue(ctx context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func TestSaveAndLookupAttempt(t *testing.T) {
	store := newMemoryRedis()
	c := NewCallCache(store, 30*time.Minute)

	attempt := domain.CallAttempt{
		AttemptID: "att-1",
		CallSID:   "CA123",
		Lead:      domain.Lead{DisplayName: "Jane", RawPhone: "5551234567", Segment: domain.SegmentVIP},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, c.SaveAttempt(context.Background(), attempt))
	assert.Equal(t, 30*time.Minute, store.ttls["astra_outbound_call_attempt:CA123"])

	got, found, err := c.LookupAttempt(context.Background(), "CA123")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, attempt, got)
}

func TestLookupMissingAttempt(t *testing.T) {
	c := NewCallCache(newMemoryRedis(), time.Minute)

	_, found, err := c.LookupAttempt(context.Background(), "CA404")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = c.LookupAttempt(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheErrors(t *testing.T) {
	store := newMemoryRedis()
	c := NewCallCache(store, time.Minute)

	assert.Error(t, c.SaveAttempt(context.Background(), domain.CallAttempt{}))

	store.err = errors.New("connection refused")
	assert.Error(t, c.SaveAttempt(context.Background(), domain.CallAttempt{CallSID: "CA1"}))
	_, _, err := c.LookupAttempt(context.Background(), "CA1")
	assert.Error(t, err)

	store.err = nil
	store.values["astra_outbound_call_attempt:CA2"] = "{not json"
	_, _, err = c.LookupAttempt(context.Background(), "CA2")
	assert.Error(t, err)
}
