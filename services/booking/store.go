package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"beautybot/models"
	"beautybot/utils"

	"github.com/go-redis/redis/v8"
)

// SessionStore persists booking sessions between conversation events.
type SessionStore interface {
	// Get retrieves the session for a chat; nil if none exists.
	Get(ctx context.Context, chatID int64) (*models.BookingSession, error)
	// Save stores the session, refreshing its TTL.
	Save(ctx context.Context, session *models.BookingSession) error
	// Delete removes the session.
	Delete(ctx context.Context, chatID int64) error
}

// RedisSessionStore keeps sessions as JSON under bookingSession:<chatID>.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(chatID int64) string {
	return utils.BookingSessionPrefix + strconv.FormatInt(chatID, 10)
}

func (s *RedisSessionStore) Get(ctx context.Context, chatID int64) (*models.BookingSession, error) {
	data, err := s.client.Get(ctx, sessionKey(chatID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load booking session: %w", err)
	}
	var session models.BookingSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal booking session: %w", err)
	}
	return &session, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, session *models.BookingSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal booking session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(session.ChatID), data, utils.BookingSessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to save booking session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, chatID int64) error {
	return s.client.Del(ctx, sessionKey(chatID)).Err()
}

// MemorySessionStore is an in-process store for tests and redis-less runs.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[int64]models.BookingSession
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[int64]models.BookingSession)}
}

func (s *MemorySessionStore) Get(_ context.Context, chatID int64) (*models.BookingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[chatID]
	if !ok {
		return nil, nil
	}
	copied := session
	return &copied, nil
}

func (s *MemorySessionStore) Save(_ context.Context, session *models.BookingSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ChatID] = *session
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
	return nil
}
