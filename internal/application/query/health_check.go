package query

import (
	"context"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthCheck struct {
	db Pinger
}

func NewHealthCheck(db Pinger) *HealthCheck {
	return &HealthCheck{db: db}
}

func (c *HealthCheck) Query(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.db.Ping(ctx)
}
