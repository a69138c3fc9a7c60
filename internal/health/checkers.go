package health

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/evidentbank/router/internal/circuitbreaker"
)

// RedisHealthChecker checks Redis connectivity
type RedisHealthChecker struct {
	client  redis.UniversalClient
	wrapper *circuitbreaker.RedisWrapper
	logger  *zap.Logger
	timeout time.Duration
}

// NewRedisHealthChecker creates a Redis health checker
func NewRedisHealthChecker(client redis.UniversalClient, wrapper *circuitbreaker.RedisWrapper, logger *zap.Logger) *RedisHealthChecker {
	return &RedisHealthChecker{
		client:  client,
		wrapper: wrapper,
		logger:  logger,
		timeout: 5 * time.Second,
	}
}

func (r *RedisHealthChecker) Name() string           { return "redis" }
func (r *RedisHealthChecker) IsCritical() bool       { return true }
func (r *RedisHealthChecker) Timeout() time.Duration { return r.timeout }

func (r *RedisHealthChecker) Check(ctx context.Context) CheckResult {
	startTime := time.Now()
	result := CheckResult{
		Component: "redis",
		Critical:  true,
		Timestamp: startTime,
	}

	// Check circuit breaker state
	if r.wrapper != nil && r.wrapper.IsCircuitBreakerOpen() {
		result.Status = StatusUnhealthy
		result.Error = "circuit breaker open"
		result.Message = "Redis circuit breaker is open"
		result.Duration = time.Since(startTime)
		return result
	}

	// Try to ping Redis
	err := r.client.Ping(ctx).Err()
	result.Duration = time.Since(startTime)

	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
		result.Message = "Redis ping failed"
		result.Details = map[string]interface{}{
			"error":      err.Error(),
			"latency_ms": result.Duration.Milliseconds(),
		}
		return result
	}

	// Check if degraded (high latency)
	if result.Duration > 100*time.Millisecond {
		result.Status = StatusDegraded
		result.Message = "Redis responding but with high latency"
	} else {
		result.Status = StatusHealthy
		result.Message = "Redis healthy"
	}

	result.Details = map[string]interface{}{
		"latency_ms":           result.Duration.Milliseconds(),
		"circuit_breaker_open": false,
	}

	return result
}

// DatabaseHealthChecker checks PostgreSQL connectivity
type DatabaseHealthChecker struct {
	db      *sql.DB
	wrapper *circuitbreaker.DatabaseWrapper
	logger  *zap.Logger
	timeout time.Duration
}

// NewDatabaseHealthChecker creates a database health checker
func NewDatabaseHealthChecker(db *sql.DB, wrapper *circuitbreaker.DatabaseWrapper, logger *zap.Logger) *DatabaseHealthChecker {
	return &DatabaseHealthChecker{
		db:      db,
		wrapper: wrapper,
		logger:  logger,
		timeout: 5 * time.Second,
	}
}

func (d *DatabaseHealthChecker) Name() string           { return "database" }
func (d *DatabaseHealthChecker) IsCritical() bool       { return true }
func (d *DatabaseHealthChecker) Timeout() time.Duration { return d.timeout }

func (d *DatabaseHealthChecker) Check(ctx context.Context) CheckResult {
	startTime := time.Now()
	result := CheckResult{
		Component: "database",
		Critical:  true,
		Timestamp: startTime,
	}

	// Check circuit breaker state
	if d.wrapper != nil && d.wrapper.IsCircuitBreakerOpen() {
		result.Status = StatusUnhealthy
		result.Error = "circuit breaker open"
		result.Message = "Database circuit breaker is open"
		result.Duration = time.Since(startTime)
		return result
	}

	// Try to ping database
	err := d.db.PingContext(ctx)
	result.Duration = time.Since(startTime)

	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
		result.Message = "Database ping failed"
		result.Details = map[string]interface{}{
			"error":      err.Error(),
			"latency_ms": result.Duration.Milliseconds(),
		}
		return result
	}

	// Get connection stats
	stats := d.db.Stats()

	// Check for connection pool issues
	if stats.OpenConnections >= stats.MaxOpenConnections && stats.MaxOpenConnections > 0 {
		result.Status = StatusDegraded
		result.Message = "Database connection pool exhausted"
	} else if result.Duration > 100*time.Millisecond {
		result.Status = StatusDegraded
		result.Message = "Database responding but with high latency"
	} else {
		result.Status = StatusHealthy
		result.Message = "Database healthy"
	}

	result.Details = map[string]interface{}{
		"latency_ms":           result.Duration.Milliseconds(),
		"open_connections":     stats.OpenConnections,
		"max_open_connections": stats.MaxOpenConnections,
		"idle_connections":     stats.Idle,
		"in_use_connections":   stats.InUse,
		"circuit_breaker_open": false,
	}

	return result
}

// FAQIndexHealthChecker checks the Qdrant-backed FAQ index over HTTP.
type FAQIndexHealthChecker struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
	timeout time.Duration
}

// NewFAQIndexHealthChecker creates a health checker for the FAQ vector index.
func NewFAQIndexHealthChecker(baseURL string, logger *zap.Logger) *FAQIndexHealthChecker {
	return &FAQIndexHealthChecker{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
		logger:  logger,
		timeout: 5 * time.Second,
	}
}

func (f *FAQIndexHealthChecker) Name() string           { return "faq_index" }
func (f *FAQIndexHealthChecker) IsCritical() bool       { return false }
func (f *FAQIndexHealthChecker) Timeout() time.Duration { return f.timeout }

func (f *FAQIndexHealthChecker) Check(ctx context.Context) CheckResult {
	startTime := time.Now()
	result := CheckResult{
		Component: "faq_index",
		Critical:  false,
		Timestamp: startTime,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/collections", nil)
	if err != nil {
		result.Status = StatusUnknown
		result.Error = err.Error()
		result.Message = "failed to build FAQ index health request"
		result.Duration = time.Since(startTime)
		return result
	}

	resp, err := f.client.Do(req)
	result.Duration = time.Since(startTime)
	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
		result.Message = "FAQ index unreachable"
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		result.Status = StatusUnhealthy
		result.Message = "FAQ index returned server error"
	} else if result.Duration > 200*time.Millisecond {
		result.Status = StatusDegraded
		result.Message = "FAQ index responding with high latency"
	} else {
		result.Status = StatusHealthy
		result.Message = "FAQ index healthy"
	}

	result.Details = map[string]interface{}{
		"latency_ms":  result.Duration.Milliseconds(),
		"status_code": resp.StatusCode,
	}

	return result
}

// LLMServiceHealthChecker checks the LLM sidecar's HTTP health endpoint.
type LLMServiceHealthChecker struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
	timeout time.Duration
}

// NewLLMServiceHealthChecker creates an LLM service health checker
func NewLLMServiceHealthChecker(baseURL string, logger *zap.Logger) *LLMServiceHealthChecker {
	return &LLMServiceHealthChecker{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
		logger:  logger,
		timeout: 5 * time.Second,
	}
}

func (l *LLMServiceHealthChecker) Name() string           { return "llm_service" }
func (l *LLMServiceHealthChecker) IsCritical() bool       { return false } // fallback exists, never blocks readiness
func (l *LLMServiceHealthChecker) Timeout() time.Duration { return l.timeout }

func (l *LLMServiceHealthChecker) Check(ctx context.Context) CheckResult {
	startTime := time.Now()
	result := CheckResult{
		Component: "llm_service",
		Critical:  false,
		Timestamp: startTime,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/health", nil)
	if err != nil {
		result.Status = StatusUnknown
		result.Error = err.Error()
		result.Duration = time.Since(startTime)
		return result
	}

	resp, err := l.client.Do(req)
	result.Duration = time.Since(startTime)
	if err != nil {
		result.Status = StatusDegraded
		result.Error = err.Error()
		result.Message = "LLM service unreachable, routing falls back to LLM_FALLBACK sentinel"
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		result.Status = StatusDegraded
		result.Message = "LLM service returned server error"
	} else {
		result.Status = StatusHealthy
		result.Message = "LLM service healthy"
	}

	result.Details = map[string]interface{}{
		"base_url":    l.baseURL,
		"latency_ms":  result.Duration.Milliseconds(),
		"status_code": resp.StatusCode,
	}

	return result
}

// CustomHealthChecker allows for custom health check logic
type CustomHealthChecker struct {
	name     string
	critical bool
	timeout  time.Duration
	checkFn  func(ctx context.Context) CheckResult
}

// NewCustomHealthChecker creates a custom health checker
func NewCustomHealthChecker(name string, critical bool, timeout time.Duration, checkFn func(ctx context.Context) CheckResult) *CustomHealthChecker {
	return &CustomHealthChecker{
		name:     name,
		critical: critical,
		timeout:  timeout,
		checkFn:  checkFn,
	}
}

func (c *CustomHealthChecker) Name() string           { return c.name }
func (c *CustomHealthChecker) IsCritical() bool       { return c.critical }
func (c *CustomHealthChecker) Timeout() time.Duration { return c.timeout }

func (c *CustomHealthChecker) Check(ctx context.Context) CheckResult {
	return c.checkFn(ctx)
}
