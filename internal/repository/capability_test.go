package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestTopologySupportsTransactions(t *testing.T) {
	tests := []struct {
		name  string
		hello bson.M
		want  bool
	}{
		{
			name:  "replica set member",
			hello: bson.M{"setName": "rs0", "isWritablePrimary": true},
			want:  true,
		},
		{
			name:  "mongos router",
			hello: bson.M{"msg": "isdbgrid"},
			want:  true,
		},
		{
			name:  "standalone server",
			hello: bson.M{"isWritablePrimary": true, "maxWireVersion": int32(21)},
			want:  false,
		},
		{
			name:  "empty set name",
			hello: bson.M{"setName": ""},
			want:  false,
		},
		{
			name:  "unrelated msg",
			hello: bson.M{"msg": "something"},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, topologySupportsTransactions(tt.hello))
		})
	}
}

func newDetectorFixture(t *testing.T) (*TxDetector, *miniredis.Miniredis, *int) {
	t.Helper()

	mr := miniredis.RunT(t)
	cache := NewRedisCacheRepository(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	probes := 0
	detector := NewTxDetector(nil, cache)
	detector.probeFn = func(ctx context.Context) bool {
		probes++
		return true
	}
	return detector, mr, &probes
}

func TestTxDetectorCachesProbeResult(t *testing.T) {
	detector, _, probes := newDetectorFixture(t)
	ctx := context.Background()

	require.True(t, detector.SupportsTransactions(ctx))
	require.True(t, detector.SupportsTransactions(ctx))
	require.True(t, detector.SupportsTransactions(ctx))

	assert.Equal(t, 1, *probes, "subsequent calls within the TTL are cache hits")
}

func TestTxDetectorReprobesAfterTTL(t *testing.T) {
	detector, mr, probes := newDetectorFixture(t)
	ctx := context.Background()

	require.True(t, detector.SupportsTransactions(ctx))
	mr.FastForward(txCapabilityTTL + time.Second)
	require.True(t, detector.SupportsTransactions(ctx))

	assert.Equal(t, 2, *probes, "an expired entry forces a fresh probe")
}

func TestTxDetectorCachesNegativeResult(t *testing.T) {
	detector, _, probes := newDetectorFixture(t)
	detector.probeFn = func(ctx context.Context) bool {
		(*probes)++
		return false
	}
	ctx := context.Background()

	assert.False(t, detector.SupportsTransactions(ctx))
	assert.False(t, detector.SupportsTransactions(ctx))
	assert.Equal(t, 1, *probes, "a standalone verdict is cached too")
}

func TestTxDetectorWithoutCacheProbesEveryCall(t *testing.T) {
	probes := 0
	detector := NewTxDetector(nil, nil)
	detector.probeFn = func(ctx context.Context) bool {
		probes++
		return true
	}
	ctx := context.Background()

	require.True(t, detector.SupportsTransactions(ctx))
	require.True(t, detector.SupportsTransactions(ctx))

	assert.Equal(t, 2, probes)
}
