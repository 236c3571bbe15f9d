package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/eventease/eventease/pkg/response"
)

const (
	// IdempotencyKeyHeader is the header name for the idempotency key
	IdempotencyKeyHeader = "X-Idempotency-Key"
	// idempotencyKeyPrefix is the Redis key namespace
	idempotencyKeyPrefix = "idempotency:"
)

// idempotencyStatus is the lifecycle of an idempotency record
type idempotencyStatus string

const (
	statusProcessing idempotencyStatus = "processing"
	statusCompleted  idempotencyStatus = "completed"
)

// idempotencyRecord stores the state of an idempotent request
type idempotencyRecord struct {
	Status       idempotencyStatus `json:"status"`
	RequestHash  string            `json:"request_hash"`
	ResponseCode int               `json:"response_code"`
	ResponseBody string            `json:"response_body"`
	CreatedAt    time.Time         `json:"created_at"`
}

// RedisClient is the subset of redis operations the middleware needs
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Redis RedisClient
	// TTL for completed records
	TTL time.Duration
	// ProcessingTTL bounds how long an in-flight record blocks retries
	ProcessingTTL time.Duration
}

// DefaultIdempotencyConfig returns default configuration
func DefaultIdempotencyConfig(rdb RedisClient) *IdempotencyConfig {
	return &IdempotencyConfig{
		Redis:         rdb,
		TTL:           24 * time.Hour,
		ProcessingTTL: 60 * time.Second,
	}
}

// bodyRecorder captures the response body so it can be replayed for a
// duplicate request.
type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored response for requests that
// repeat an X-Idempotency-Key. Requests without the header pass through.
func IdempotencyMiddleware(cfg *IdempotencyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || cfg == nil || cfg.Redis == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		redisKey := idempotencyKeyPrefix + key
		reqHash := hashRequest(c)

		record := idempotencyRecord{
			Status:      statusProcessing,
			RequestHash: reqHash,
			CreatedAt:   time.Now(),
		}
		raw, _ := json.Marshal(record)

		set, err := cfg.Redis.SetNX(ctx, redisKey, raw, cfg.ProcessingTTL).Result()
		if err != nil {
			// Redis being down must not block bookings
			c.Next()
			return
		}

		if !set {
			existing, err := cfg.Redis.Get(ctx, redisKey).Result()
			if err != nil {
				c.Next()
				return
			}
			var prev idempotencyRecord
			if err := json.Unmarshal([]byte(existing), &prev); err != nil {
				c.Next()
				return
			}
			if prev.RequestHash != reqHash {
				response.Error(c, http.StatusUnprocessableEntity, "IDEMPOTENCY_CONFLICT",
					"idempotency key reused with a different request")
				c.Abort()
				return
			}
			if prev.Status == statusProcessing {
				response.Conflict(c, "REQUEST_IN_PROGRESS", "request with this idempotency key is in progress")
				c.Abort()
				return
			}
			c.Data(prev.ResponseCode, "application/json", []byte(prev.ResponseBody))
			c.Abort()
			return
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = recorder

		c.Next()

		record.Status = statusCompleted
		record.ResponseCode = c.Writer.Status()
		record.ResponseBody = recorder.body.String()
		if raw, err := json.Marshal(record); err == nil {
			cfg.Redis.Set(ctx, redisKey, raw, cfg.TTL)
		}
	}
}

// hashRequest fingerprints method, path, user and body so a reused key
// with a different request can be rejected.
func hashRequest(c *gin.Context) string {
	h := sha256.New()
	h.Write([]byte(c.Request.Method))
	h.Write([]byte(c.Request.URL.Path))
	h.Write([]byte(c.GetString(ContextKeyUserID)))

	if c.Request.Body != nil {
		body, err := io.ReadAll(c.Request.Body)
		if err == nil {
			h.Write(body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
