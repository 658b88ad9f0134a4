package docstore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

const maxTxRetries = 5

// RedisStore keeps each document as a JSON string under its own key and
// tracks the ids of a collection in a set.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) docKey(collection, id string) string {
	return s.prefix + ":doc:" + collection + ":" + id
}

func (s *RedisStore) indexKey(collection string) string {
	return s.prefix + ":idx:" + collection
}

func (s *RedisStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	raw, err := s.rdb.Get(ctx, s.docKey(collection, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("RedisStore.Get: %w", err)
	}

	data, err := decode(raw)
	if err != nil {
		return nil, err
	}
	return &Document{ID: id, Data: data}, nil
}

func (s *RedisStore) FindBy(ctx context.Context, collection, field string, value any) ([]Document, error) {
	ids, err := s.rdb.SMembers(ctx, s.indexKey(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("RedisStore.FindBy index: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	sort.Strings(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.docKey(collection, id)
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("RedisStore.FindBy mget: %w", err)
	}

	var docs []Document
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// id left in the index after the key expired or was removed
			continue
		}
		data, err := decode([]byte(raw))
		if err != nil {
			return nil, err
		}
		if matches(data, field, value) {
			docs = append(docs, Document{ID: ids[i], Data: data})
		}
	}
	return docs, nil
}

func (s *RedisStore) Set(ctx context.Context, collection, id string, data map[string]any, merge bool) error {
	update, err := normalize(data)
	if err != nil {
		return err
	}

	key := s.docKey(collection, id)
	return s.watch(ctx, key, func(tx *redis.Tx) error {
		next := update
		if merge {
			existing, err := s.read(ctx, tx, key)
			switch {
			case errors.Is(err, ErrNotFound):
			case err != nil:
				return err
			default:
				next = mergeData(existing, update)
			}
		}
		return s.write(ctx, tx, collection, id, next)
	})
}

func (s *RedisStore) ArrayUnion(ctx context.Context, collection, id, field string, values ...any) error {
	fn, err := unionMutation(field, values)
	if err != nil {
		return err
	}
	return s.mutate(ctx, collection, id, fn)
}

func (s *RedisStore) ArrayRemove(ctx context.Context, collection, id, field string, values ...any) error {
	fn, err := removeMutation(field, values)
	if err != nil {
		return err
	}
	return s.mutate(ctx, collection, id, fn)
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) mutate(ctx context.Context, collection, id string, fn mutation) error {
	key := s.docKey(collection, id)
	return s.watch(ctx, key, func(tx *redis.Tx) error {
		data, err := s.read(ctx, tx, key)
		if err != nil {
			return err
		}
		return s.write(ctx, tx, collection, id, fn(data))
	})
}

// watch runs fn under optimistic locking on key, retrying when another
// client modified the key in between.
func (s *RedisStore) watch(ctx context.Context, key string, fn func(tx *redis.Tx) error) error {
	for i := 0; i < maxTxRetries; i++ {
		err := s.rdb.Watch(ctx, fn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("RedisStore: transaction on %s kept conflicting", key)
}

func (s *RedisStore) read(ctx context.Context, tx *redis.Tx, key string) (map[string]any, error) {
	raw, err := tx.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("RedisStore.read: %w", err)
	}
	return decode(raw)
}

func (s *RedisStore) write(ctx context.Context, tx *redis.Tx, collection, id string, data map[string]any) error {
	raw, err := encode(data)
	if err != nil {
		return err
	}
	_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.docKey(collection, id), raw, 0)
		pipe.SAdd(ctx, s.indexKey(collection), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("RedisStore.write: %w", err)
	}
	return nil
}
