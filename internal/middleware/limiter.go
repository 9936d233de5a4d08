package middleware

import (
	"github.com/haierkeys/fast-note-service/pkg/app"
	"github.com/haierkeys/fast-note-service/pkg/code"
	"github.com/haierkeys/fast-note-service/pkg/limiter"

	"github.com/gin-gonic/gin"
)

// RateLimiter rejects requests whose path bucket is empty with ErrorTooManyRequests
// RateLimiter 令牌桶为空时返回 ErrorTooManyRequests
func RateLimiter(l limiter.Face) gin.HandlerFunc {
	return func(c *gin.Context) {
		if bucket, ok := l.GetBucket(l.Key(c)); ok {
			if bucket.TakeAvailable(1) == 0 {
				c.Header("Retry-After", "1")
				app.NewResponse(c).ToResponse(code.ErrorTooManyRequests)
				c.Abort()
				return
			}
		}

		c.Next()
	}
}
