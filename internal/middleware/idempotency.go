package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplay         = "Idempotent-Replay"

	inFlightMarker = "in_flight"
)

type IdempotencyConfig struct {
	// InFlightTTL bounds how long a crashed request keeps its key locked.
	InFlightTTL time.Duration
	// ResultTTL is how long a finished response is replayed.
	ResultTTL time.Duration
}

type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency makes retried writes safe. The first request with a key
// runs; a concurrent duplicate gets 409; a later duplicate gets the first
// response replayed. Server errors release the key so the client can
// retry. Without a redis client, or without the header, it does nothing.
func Idempotency(rdb *redis.Client, cfg IdempotencyConfig, log zerolog.Logger) gin.HandlerFunc {
	if cfg.InFlightTTL <= 0 {
		cfg.InFlightTTL = 30 * time.Second
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}

	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
		if rdb == nil || key == "" {
			c.Next()
			return
		}
		if len(key) > 128 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"code": "invalid_idempotency_key"})
			return
		}

		ctx := c.Request.Context()
		redisKey := "idem:" + c.GetString(ContextUserID) + ":" + c.FullPath() + ":" + key

		acquired, err := rdb.SetNX(ctx, redisKey, inFlightMarker, cfg.InFlightTTL).Result()
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("idempotency store unavailable")
			c.Next()
			return
		}

		if !acquired {
			raw, err := rdb.Get(ctx, redisKey).Result()
			if err != nil || raw == inFlightMarker {
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{"code": "request_in_progress"})
				return
			}
			var prev storedResponse
			if err := json.Unmarshal([]byte(raw), &prev); err != nil {
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{"code": "request_in_progress"})
				return
			}
			c.Header(HeaderReplay, "true")
			c.Data(prev.Status, prev.ContentType, prev.Body)
			c.Abort()
			return
		}

		w := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		status := w.Status()
		if status >= http.StatusInternalServerError {
			if err := rdb.Del(ctx, redisKey).Err(); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("idempotency key release failed")
			}
			return
		}

		payload, _ := json.Marshal(storedResponse{
			Status:      status,
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.buf.Bytes(),
		})
		if err := rdb.Set(ctx, redisKey, payload, cfg.ResultTTL).Err(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("idempotency result not stored")
		}
	}
}
