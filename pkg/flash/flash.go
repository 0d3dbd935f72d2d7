// Package flash keeps one-shot user messages in redis until they are read.
package flash

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

const ttl = time.Hour

type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

type Store struct {
	redisClient *redis.Client
}

func NewStore(redisClient *redis.Client) *Store {
	return &Store{redisClient: redisClient}
}

func key(userID string) string {
	return fmt.Sprintf("flash:%s", userID)
}

// Add queues a message for userID. A nil store drops it.
func (s *Store) Add(ctx context.Context, userID string, level Level, text string) error {
	if s == nil || s.redisClient == nil || userID == "" {
		return nil
	}
	payload, err := json.Marshal(Message{Level: level, Text: text})
	if err != nil {
		return err
	}
	pipe := s.redisClient.TxPipeline()
	pipe.RPush(ctx, key(userID), payload)
	pipe.Expire(ctx, key(userID), ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// Pop returns and clears all queued messages for userID in insertion order.
func (s *Store) Pop(ctx context.Context, userID string) ([]Message, error) {
	if s == nil || s.redisClient == nil || userID == "" {
		return []Message{}, nil
	}
	pipe := s.redisClient.TxPipeline()
	rangeCmd := pipe.LRange(ctx, key(userID), 0, -1)
	pipe.Del(ctx, key(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	raw := rangeCmd.Val()
	messages := make([]Message, 0, len(raw))
	for _, item := range raw {
		var m Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			continue
		}
		messages = append(messages, m)
	}
	return messages, nil
}
