package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/singleflight"
)

const (
	txCapabilityKey = "mongo:tx_capability"
	txCapabilityTTL = 30 * time.Second
)

// TxDetector answers whether the connected MongoDB topology supports
// multi-document transactions (replica set or sharded cluster; standalone
// servers do not). The probe is a read-only `hello` command, re-evaluated per
// cascade call because topology can change across reconnects; a short Redis
// TTL keeps it cheap and singleflight collapses concurrent probes.
type TxDetector struct {
	client *mongo.Client
	cache  *RedisCacheRepository // optional, nil probes every call
	group  singleflight.Group

	probeFn func(ctx context.Context) bool
}

func NewTxDetector(client *mongo.Client, cache *RedisCacheRepository) *TxDetector {
	d := &TxDetector{
		client: client,
		cache:  cache,
	}
	d.probeFn = d.probe
	return d
}

// SupportsTransactions reports the current topology capability.
func (d *TxDetector) SupportsTransactions(ctx context.Context) bool {
	if d.cache != nil {
		var supported bool
		if err := d.cache.Get(ctx, txCapabilityKey, &supported); err == nil {
			return supported
		}
	}

	v, _, _ := d.group.Do(txCapabilityKey, func() (interface{}, error) {
		return d.probeFn(ctx), nil
	})
	supported, _ := v.(bool)

	if d.cache != nil {
		_ = d.cache.Set(ctx, txCapabilityKey, supported, txCapabilityTTL)
	}
	return supported
}

func (d *TxDetector) probe(ctx context.Context) bool {
	var result bson.M
	err := d.client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&result)
	if err != nil {
		// Pre-5.0 servers only know the legacy spelling.
		if err := d.client.Database("admin").RunCommand(ctx, bson.D{{Key: "isMaster", Value: 1}}).Decode(&result); err != nil {
			return false
		}
	}
	return topologySupportsTransactions(result)
}

// topologySupportsTransactions inspects a hello/isMaster reply: a replica-set
// member reports setName, a mongos reports msg "isdbgrid".
func topologySupportsTransactions(hello bson.M) bool {
	if name, ok := hello["setName"].(string); ok && name != "" {
		return true
	}
	if msg, ok := hello["msg"].(string); ok && msg == "isdbgrid" {
		return true
	}
	return false
}
