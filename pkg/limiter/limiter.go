// Package limiter 基于令牌桶的接口限流
package limiter

import (
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// Face 限流器接口
type Face interface {
	Key(c *gin.Context) string
	GetBucket(key string) (*ratelimit.Bucket, bool)
	AddBuckets(rules ...BucketRule) Face
}

// BucketRule 令牌桶规则
type BucketRule struct {
	Key          string        // 路由路径
	FillInterval time.Duration // 填充间隔
	Capacity     int64         // 桶容量
	Quantum      int64         // 每次填充数量
}

// MethodLimiter limits by request path, each client IP gets its own bucket
// MethodLimiter 按请求路径限流，每个客户端 IP 使用独立的令牌桶
type MethodLimiter struct {
	mu      sync.Mutex
	rules   map[string]BucketRule
	buckets map[string]*ratelimit.Bucket
}

func NewMethodLimiter() *MethodLimiter {
	return &MethodLimiter{
		rules:   make(map[string]BucketRule),
		buckets: make(map[string]*ratelimit.Bucket),
	}
}

// Key returns "<path>|<client ip>"
// Key 返回 "<路径>|<客户端 IP>"
func (l *MethodLimiter) Key(c *gin.Context) string {
	uri := c.Request.URL.Path
	if i := strings.Index(uri, "?"); i >= 0 {
		uri = uri[:i]
	}
	return uri + "|" + c.ClientIP()
}

// GetBucket returns the bucket for key, creating it from the path rule; false when no rule applies
// GetBucket 返回 key 对应的令牌桶，按路径规则懒创建；无规则时返回 false
func (l *MethodLimiter) GetBucket(key string) (*ratelimit.Bucket, bool) {
	path := key
	if i := strings.Index(key, "|"); i >= 0 {
		path = key[:i]
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rule, ok := l.rules[path]
	if !ok {
		return nil, false
	}
	if bucket, ok := l.buckets[key]; ok {
		return bucket, true
	}
	bucket := ratelimit.NewBucketWithQuantum(rule.FillInterval, rule.Capacity, rule.Quantum)
	l.buckets[key] = bucket
	return bucket, true
}

func (l *MethodLimiter) AddBuckets(rules ...BucketRule) Face {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, rule := range rules {
		l.rules[rule.Key] = rule
	}
	return l
}
