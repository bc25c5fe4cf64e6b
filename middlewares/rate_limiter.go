package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

var (
	loginLimiterOnce sync.Once
	loginLimiter     *rate.Limiter
)

// NewStrictRateLimiter throttles the login endpoint: 5 attempts per minute
// across all callers. Admin logins are rare; anything faster is a guessing
// attempt.
func NewStrictRateLimiter() gin.HandlerFunc {
	loginLimiterOnce.Do(func() {
		loginLimiter = rate.NewLimiter(rate.Every(12*time.Second), 5)
	})
	return func(c *gin.Context) {
		if !loginLimiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many attempts, please wait a moment",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
