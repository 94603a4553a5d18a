package kv

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

// Redis is a Store in Redis strings under a namespace.
type Redis struct {
	rdb redis.UniversalClient
	ns  string
}

// NewRedis wraps rdb. Every key is stored as namespace + ":" + key.
func NewRedis(rdb redis.UniversalClient, namespace string) *Redis {
	return &Redis{rdb: rdb, ns: namespace + ":"}
}

func (s *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, s.ns+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, eris.Wrapf(err, "kv: redis get %s", key)
	}
	return v, true, nil
}

func (s *Redis) Set(ctx context.Context, key, value string) error {
	return eris.Wrapf(s.rdb.Set(ctx, s.ns+key, value, 0).Err(), "kv: redis set %s", key)
}

func (s *Redis) Delete(ctx context.Context, key string) error {
	return eris.Wrapf(s.rdb.Del(ctx, s.ns+key).Err(), "kv: redis delete %s", key)
}

func (s *Redis) Keys(ctx context.Context, prefix string) ([]string, error) {
	out := []string{}
	iter := s.rdb.Scan(ctx, 0, globEscape(s.ns+prefix)+"*", 200).Iterator()
	for iter.Next(ctx) {
		out = append(out, strings.TrimPrefix(iter.Val(), s.ns))
	}
	if err := iter.Err(); err != nil {
		return nil, eris.Wrapf(err, "kv: redis scan %s", prefix)
	}
	sort.Strings(out)
	return out, nil
}

var globReplacer = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func globEscape(s string) string {
	return globReplacer.Replace(s)
}
