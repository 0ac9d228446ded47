package questdb

import (
	"context"
	"time"

	"github.com/muhammadchandra19/ohlcv-engine/pkg/errors"
)

// HealthCheck is the result of a QuestDB health probe.
type HealthCheck struct {
	Status       string        `json:"status"`
	ResponseTime time.Duration `json:"response_time"`
	ActiveConns  int32         `json:"active_connections"`
	IdleConns    int32         `json:"idle_connections"`
	MaxConns     int32         `json:"max_connections"`
	Target       string        `json:"target"`
	Error        string        `json:"error,omitempty"`
}

// CheckHealth pings the pool and runs a trivial query.
func (p *Pool) CheckHealth(ctx context.Context) *HealthCheck {
	start := time.Now()

	stats := p.Stat()
	health := &HealthCheck{
		Target:      p.config.String(),
		ActiveConns: stats.AcquiredConns(),
		IdleConns:   stats.IdleConns(),
		MaxConns:    stats.MaxConns(),
	}

	var one int
	if err := p.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		health.Status = "unhealthy"
		health.Error = err.Error()
		health.ResponseTime = time.Since(start)
		return health
	}

	health.Status = "healthy"
	health.ResponseTime = time.Since(start)
	return health
}

// Check satisfies the health checker used by the HTTP health endpoint.
func (p *Pool) Check(ctx context.Context) error {
	if health := p.CheckHealth(ctx); health.Error != "" {
		return errors.New(errors.GeneralRepositoryError, health.Error, "questdb")
	}
	return nil
}
