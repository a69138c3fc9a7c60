package convstate

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/evidentbank/router/internal/circuitbreaker"
	ometrics "github.com/evidentbank/router/internal/metrics"
	"github.com/evidentbank/router/internal/router"
)

// Store is the Redis-backed, single-turn conversation memory the router
// reads at the start of a turn and writes at the end. It satisfies
// router.ConversationStore.
type Store struct {
	client *circuitbreaker.RedisWrapper
	logger *zap.Logger
	ttl    time.Duration

	mu          sync.RWMutex
	local       map[string]router.LastTurn
	localAccess map[string]time.Time
	maxLocal    int
}

// New opens a pooled Redis connection and verifies it with a ping.
func New(cfg Config, logger *zap.Logger) (*Store, error) {
	cfg.applyDefaults()

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})
	wrap := circuitbreaker.NewRedisWrapper(client, logger)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := wrap.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping conversation state store: %w", err)
	}

	logger.Info("conversation state store connected", zap.String("addr", cfg.Addr))

	return &Store{
		client:      wrap,
		logger:      logger,
		ttl:         cfg.TTL,
		local:       make(map[string]router.LastTurn),
		localAccess: make(map[string]time.Time),
		maxLocal:    cfg.MaxLocal,
	}, nil
}

// Wrapper exposes the circuit-breaker-wrapped client for health checks.
func (s *Store) Wrapper() *circuitbreaker.RedisWrapper { return s.client }

// Client exposes the raw Redis client for the liveness checker, which
// pings directly rather than through the circuit breaker.
func (s *Store) Client() *redis.Client { return s.client.GetClient() }

// Close releases the underlying Redis connection.
func (s *Store) Close() error { return s.client.Close() }

func key(sessionID string) string { return fmt.Sprintf("convstate:%s", sessionID) }

// Get returns the last turn recorded for sessionID, or false if none exists
// or it expired.
func (s *Store) Get(ctx context.Context, sessionID string) (router.LastTurn, bool) {
	s.mu.RLock()
	if turn, ok := s.local[sessionID]; ok {
		s.mu.RUnlock()
		ometrics.SessionCacheHits.Inc()
		s.touch(sessionID)
		return turn, true
	}
	s.mu.RUnlock()
	ometrics.SessionCacheMisses.Inc()

	data, err := s.client.Get(ctx, key(sessionID)).Bytes()
	if err == redis.Nil {
		return router.LastTurn{}, false
	}
	if err != nil {
		s.logger.Warn("conversation state get failed", zap.String("session_id", sessionID), zap.Error(err))
		return router.LastTurn{}, false
	}

	var turn router.LastTurn
	if err := json.Unmarshal(data, &turn); err != nil {
		s.logger.Warn("conversation state unmarshal failed", zap.String("session_id", sessionID), zap.Error(err))
		return router.LastTurn{}, false
	}

	s.cache(sessionID, turn)
	return turn, true
}

// Commit persists turn as the new last turn for its session, replacing
// whatever was there before.
func (s *Store) Commit(ctx context.Context, turn router.LastTurn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshal last turn: %w", err)
	}

	if err := s.client.Set(ctx, key(turn.SessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("commit last turn: %w", err)
	}

	s.cache(turn.SessionID, turn)
	return nil
}

// Clear discards any recorded last turn for sessionID.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, key(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear last turn: %w", err)
	}

	s.mu.Lock()
	delete(s.local, sessionID)
	delete(s.localAccess, sessionID)
	ometrics.SessionCacheSize.Set(float64(len(s.local)))
	s.mu.Unlock()
	return nil
}

func (s *Store) cache(sessionID string, turn router.LastTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.local[sessionID] = turn
	s.localAccess[sessionID] = time.Now()
	s.evictLocked()
	ometrics.SessionCacheSize.Set(float64(len(s.local)))
}

func (s *Store) touch(sessionID string) {
	s.mu.Lock()
	s.localAccess[sessionID] = time.Now()
	s.mu.Unlock()
}

// evictLocked drops the oldest-accessed half of the local cache once it
// exceeds maxLocal. Caller must hold mu.
func (s *Store) evictLocked() {
	if len(s.local) <= s.maxLocal {
		return
	}

	type accessEntry struct {
		id   string
		time time.Time
	}
	entries := make([]accessEntry, 0, len(s.local))
	for id := range s.local {
		entries = append(entries, accessEntry{id: id, time: s.localAccess[id]})
	}
	for i := 0; i < len(entries)-1; i++ {
		for j := i + 1; j < len(entries); j++ {
			if entries[j].time.Before(entries[i].time) {
				entries[i], entries[j] = entries[j], entries[i]
			}
		}
	}

	toRemove := s.maxLocal / 2
	for i := 0; i < toRemove && i < len(entries); i++ {
		delete(s.local, entries[i].id)
		delete(s.localAccess, entries[i].id)
		ometrics.SessionCacheEvictions.Inc()
	}
}
