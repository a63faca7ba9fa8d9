package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// IPRateLimiter 基于令牌桶的IP频率限制器
type IPRateLimiter struct {
	mu          sync.Mutex
	buckets     map[string]*bucket
	rate        float64 // 每秒恢复的配额数
	burst       int     // 初始配额（最大配额）
	lastCleanup time.Time
}

type bucket struct {
	updated   time.Time
	remaining float64
}

// NewIPRateLimiter 创建新的频率限制器
// rate: 每秒恢复的配额数（0.05表示每20秒恢复1个）
// burst: 初始配额和最大配额
func NewIPRateLimiter(rate float64, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		buckets:     make(map[string]*bucket),
		rate:        rate,
		burst:       burst,
		lastCleanup: time.Now(),
	}
}

// allow 消耗一个配额，返回剩余配额和是否放行
func (r *IPRateLimiter) allow(ip string) (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()

	// 定期清理满配额的旧记录
	if now.Sub(r.lastCleanup) > time.Minute {
		ttl := time.Duration(float64(r.burst)/r.rate) * time.Second
		for key, b := range r.buckets {
			if now.Sub(b.updated) > ttl {
				delete(r.buckets, key)
			}
		}
		r.lastCleanup = now
	}

	b, exists := r.buckets[ip]
	if !exists {
		b = &bucket{updated: now, remaining: float64(r.burst)}
		r.buckets[ip] = b
	} else {
		// 根据流逝时间恢复配额
		elapsed := now.Sub(b.updated)
		b.updated = now
		if elapsed > 0 {
			b.remaining += elapsed.Seconds() * r.rate
			if b.remaining > float64(r.burst) {
				b.remaining = float64(r.burst)
			}
		}
	}

	// 配额不足时不再扣减，持续的请求不会把封禁时间越拖越长
	if b.remaining < 1 {
		return b.remaining, false
	}
	b.remaining -= 1
	return b.remaining, true
}

// Middleware 返回 Gin 中间件
func (r *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if r.rate <= 0 || r.burst <= 0 {
			c.Next()
			return
		}

		remaining, ok := r.allow(c.ClientIP())
		if !ok {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"ok":      false,
				"message": "请求过于频繁，请稍后再试",
			})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(r.burst))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(math.Floor(remaining))))

		c.Next()
	}
}
