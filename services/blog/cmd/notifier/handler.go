package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"advanced-blog/pkg/logger"
	"advanced-blog/pkg/models"

	"github.com/redis/go-redis/v9"
)

const (
	publishedFeedKey = "notifications:post_published"
	publishedFeedMax = 1000
	publishedFeedTTL = 7 * 24 * time.Hour
)

// taskHandler turns post_published tasks into entries of a capped redis list
// that readers of the blog can poll.
type taskHandler struct {
	redisClient *redis.Client
	logger      *logger.Logger
}

func newTaskHandler(redisClient *redis.Client, log *logger.Logger) *taskHandler {
	return &taskHandler{redisClient: redisClient, logger: log}
}

// Handle drops tasks it cannot use by acknowledging them. Only a redis
// failure is returned, which requeues the task.
func (h *taskHandler) Handle(task map[string]interface{}) error {
	taskType, _ := task["type"].(string)
	if taskType != models.ActivityPostPublished {
		h.logger.Warn("[NOTIFICATION HANDLER] Ignoring task of type %q", taskType)
		return nil
	}

	postID, _ := task["post_id"].(string)
	authorID, _ := task["author_id"].(string)
	if postID == "" || authorID == "" {
		h.logger.Error("[NOTIFICATION HANDLER] Invalid post_published task: missing post_id or author_id, task=%+v", task)
		return nil
	}

	entry, err := json.Marshal(map[string]interface{}{
		"post_id":   postID,
		"author_id": authorID,
		"title":     task["title"],
		"slug":      task["slug"],
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pipe := h.redisClient.TxPipeline()
	pipe.LPush(ctx, publishedFeedKey, entry)
	pipe.LTrim(ctx, publishedFeedKey, 0, publishedFeedMax-1)
	pipe.Expire(ctx, publishedFeedKey, publishedFeedTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	h.logger.Info("[NOTIFICATION HANDLER] Post %s by %s published", postID, authorID)
	return nil
}
