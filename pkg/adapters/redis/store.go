// Package redis publishes cell snapshots and step summaries to Redis so that several
// observers can follow a running simulation.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/cellfate/pkg/domain"
)

// Store implements ports.SnapshotStore and ports.SummaryRecorder using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the expiration for snapshots.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix, typically one per run.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "cellfate:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Client exposes the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() *backend.Client { return s.client }

func (s *Store) key(cellID string) string {
	return s.prefix + "cell:" + cellID
}

func (s *Store) indexKey() string {
	return s.prefix + "cells"
}

func (s *Store) summaryKey() string {
	return s.prefix + "summaries"
}

// Save writes the snapshot as JSON and indexes the cell.
func (s *Store) Save(ctx context.Context, snap domain.CellSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	pipe := s.client.Pipeline()

	// 1. Snapshot with TTL (0 = no expiration)
	pipe.Set(ctx, s.key(snap.CellID), data, s.ttl)

	// 2. Index (ZSET), scored by expiry so List can prune lazily
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: snap.CellID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves a snapshot.
func (s *Store) Load(ctx context.Context, cellID string) (domain.CellSnapshot, error) {
	val, err := s.client.Get(ctx, s.key(cellID)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.CellSnapshot{}, domain.ErrSnapshotNotFound
		}
		return domain.CellSnapshot{}, fmt.Errorf("failed to get from redis: %w", err)
	}

	var snap domain.CellSnapshot
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		return domain.CellSnapshot{}, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return snap, nil
}

// Delete removes a cell's snapshot.
func (s *Store) Delete(ctx context.Context, cellID string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(cellID))
	pipe.ZRem(ctx, s.indexKey(), cellID)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns the indexed cells, pruning expired entries first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired snapshots: %w", err)
	}

	cells, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return cells, nil
}

// Record appends a step summary to the run's summary list.
func (s *Store) Record(ctx context.Context, summary domain.StepSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := s.client.RPush(ctx, s.summaryKey(), data).Err(); err != nil {
		return fmt.Errorf("failed to record summary: %w", err)
	}
	return nil
}

// History returns every recorded summary in order.
func (s *Store) History(ctx context.Context) ([]domain.StepSummary, error) {
	vals, err := s.client.LRange(ctx, s.summaryKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read summaries: %w", err)
	}

	out := make([]domain.StepSummary, 0, len(vals))
	for _, v := range vals {
		var sum domain.StepSummary
		if err := json.Unmarshal([]byte(v), &sum); err != nil {
			return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
		}
		out = append(out, sum)
	}
	return out, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
