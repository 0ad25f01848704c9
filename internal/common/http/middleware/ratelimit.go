package middleware

import (
	"math"
	"strconv"

	"codefix/internal/common/ratelimit"
	pkgerrors "codefix/pkg/errors"
	"codefix/pkg/utils/logger"
	"codefix/pkg/utils/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const rateLimitKeyPrefix = "ratelimit:ip:"

// RateLimitMiddleware limits requests per client IP. Cache failures let the
// request through.
func RateLimitMiddleware(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		decision, err := limiter.Allow(c.Request.Context(), rateLimitKeyPrefix+c.ClientIP())
		if err != nil {
			logger.Warn(c.Request.Context(), "rate limit check failed, allowing request", zap.Error(err))
			c.Next()
			return
		}
		if !decision.Allowed {
			retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			response.AbortWithError(c, pkgerrors.New(pkgerrors.TooManyRequests).
				WithDetail("retryAfter", retryAfter))
			return
		}
		c.Next()
	}
}
