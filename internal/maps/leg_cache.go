package maps

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const legKeyPrefix = "roadtrip:leg:"

// CachedRouteService decorates a LegComputer with a Redis cache. Only
// successful legs are cached; Redis failures fall through to the provider.
type CachedRouteService struct {
	next   LegComputer
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedRouteService wraps next. A zero ttl keeps entries without expiry.
func NewCachedRouteService(next LegComputer, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedRouteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedRouteService{next: next, redis: rdb, ttl: ttl, logger: logger}
}

func (s *CachedRouteService) ComputeLeg(ctx context.Context, origin, destination string, opts LegOptions) (Leg, error) {
	key := legKey(origin, destination, opts)

	raw, err := s.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var leg Leg
		if err := json.Unmarshal(raw, &leg); err == nil {
			return leg, nil
		}
		s.logger.Warn("maps: leg cache decode", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		s.logger.Warn("maps: leg cache read", zap.String("key", key), zap.Error(err))
	}

	leg, err := s.next.ComputeLeg(ctx, origin, destination, opts)
	if err != nil {
		return Leg{}, err
	}

	if b, err := json.Marshal(leg); err == nil {
		if err := s.redis.Set(ctx, key, b, s.ttl).Err(); err != nil {
			s.logger.Warn("maps: leg cache write", zap.String("key", key), zap.Error(err))
		}
	}
	return leg, nil
}

func legKey(origin, destination string, opts LegOptions) string {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	parts := []string{norm(origin), norm(destination)}
	for _, w := range opts.Waypoints {
		parts = append(parts, "via:"+norm(w))
	}
	for _, a := range opts.Avoid {
		parts = append(parts, "avoid:"+norm(a))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return legKeyPrefix + hex.EncodeToString(sum[:])
}
