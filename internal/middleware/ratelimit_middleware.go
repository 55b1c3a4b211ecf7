package middleware

import (
	"net/http"
	"strconv"

	"livepoll/internal/redis"
	"livepoll/internal/transport/httpdto"
	"livepoll/pkg/logger"

	"github.com/gin-gonic/gin"
)

// VoteRateLimitMiddleware throttles vote submissions per client IP. It is
// abuse deterrence on top of the fingerprint dedup, so it fails open: if
// the limiter is absent or Redis is unreachable, the vote proceeds.
func VoteRateLimitMiddleware(limiter *redis.RateLimiter, l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		result, err := limiter.AllowVote(c.Request.Context(), c.ClientIP())
		if err != nil {
			if l != nil {
				l.Warnf("vote rate limit check failed, allowing request: %s", err)
			}
			c.Next()
			return
		}

		setRateLimitHeaders(c, result)

		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, httpdto.MessageResponse{Message: "Too many vote attempts, slow down."})
			c.Abort()
			return
		}

		c.Next()
	}
}

// PollCreateRateLimitMiddleware throttles poll creation per client IP
func PollCreateRateLimitMiddleware(limiter *redis.RateLimiter, l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		result, err := limiter.AllowPollCreate(c.Request.Context(), c.ClientIP())
		if err != nil {
			if l != nil {
				l.Warnf("poll create rate limit check failed, allowing request: %s", err)
			}
			c.Next()
			return
		}

		setRateLimitHeaders(c, result)

		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, httpdto.MessageResponse{Message: "Too many polls created, slow down."})
			c.Abort()
			return
		}

		c.Next()
	}
}

// setRateLimitHeaders sets standard rate limit response headers
func setRateLimitHeaders(c *gin.Context, result *redis.RateLimitResult) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(result.ResetIn.Seconds()), 10))
}
