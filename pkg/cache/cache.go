// Package cache is the durable TTL result cache backing the query pipeline.
// Entries live in redis under a shared prefix; payloads are opaque JSON.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/paraggit/reportportal-llm-query/config"
)

const keyPrefix = "rpquery:cache:"

var (
	instance *Store
	once     sync.Once
)

type Store struct {
	client *redis.Client
}

// envelope is the stored shape of one entry. Redis expiry enforces
// visibility; the timestamps are kept so Sweep can reap entries written
// without a native TTL and for operator inspection.
type envelope struct {
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// GetInstance dials redis from the application config. Panics on connection
// failure, matching service bootstrap behavior.
func GetInstance() *Store {
	once.Do(func() {
		client := redis.NewClient(&redis.Options{
			Addr:         config.GetInstance().GetString(config.RedisClientHost),
			Password:     config.GetInstance().GetString(config.RedisClientPassword),
			DB:           config.GetInstance().GetInt(config.RedisClientDb),
			MaxRetries:   3,
			DialTimeout:  time.Second * 30,
			ReadTimeout:  time.Second * 5,
			WriteTimeout: time.Second * 5,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := client.Ping(ctx).Result(); err != nil {
			log.Errorf("redis ping failed: %v", err)
			panic(err)
		}

		instance = New(client)
	})
	return instance
}

// Get loads the payload stored under key into dest. Returns false for a
// missing or expired entry. A payload that no longer deserializes is treated
// as a miss, not an error.
func (s *Store) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, errors.WithStack(err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Warnf("cache entry %v is not deserializable, treating as miss: %v", key, err)
		return false, nil
	}
	if !env.ExpiresAt.After(time.Now()) {
		return false, nil
	}
	if err := json.Unmarshal(env.Payload, dest); err != nil {
		log.Warnf("cache payload %v is not deserializable, treating as miss: %v", key, err)
		return false, nil
	}
	return true, nil
}

// Set stores payload under key for ttl. A previous entry under the same key
// is replaced wholesale. A non-positive ttl removes the key instead, so the
// next Get misses immediately.
func (s *Store) Set(ctx context.Context, key string, payload interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		return s.client.Del(ctx, keyPrefix+key).Err()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.WithStack(err)
	}

	now := time.Now()
	raw, err := json.Marshal(envelope{
		Payload:   body,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	if err := s.client.Set(ctx, keyPrefix+key, raw, ttl).Err(); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Sweep removes entries whose recorded expiry has passed. Redis already
// evicts entries written with a native TTL, so this only reclaims space from
// entries that lost theirs; correctness of Get never depends on it.
func (s *Store) Sweep(ctx context.Context) error {
	now := time.Now()
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			// unreadable entries are dead weight
			s.client.Del(ctx, key)
			continue
		}
		if !env.ExpiresAt.After(now) {
			s.client.Del(ctx, key)
		}
	}
	if err := iter.Err(); err != nil {
		return errors.WithStack(err)
	}
	log.Info("swept expired cache entries")
	return nil
}

// Clear removes every cache entry.
func (s *Store) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return errors.WithStack(err)
		}
	}
	if err := iter.Err(); err != nil {
		return errors.WithStack(err)
	}
	return nil
}
