package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HealthStatus is the latest dependency snapshot served on /healthz. Sessions
// covers the redis database holding booking sessions; the asynq queue owns its
// own connection and reports through the worker logs instead.
type HealthStatus struct {
	Mongo     bool      `json:"mongo"`
	Sessions  bool      `json:"sessions"`
	CheckedAt time.Time `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	healthMu      sync.RWMutex
)

// GetHealthStatus returns the latest stored snapshot.
func GetHealthStatus() HealthStatus {
	healthMu.RLock()
	defer healthMu.RUnlock()
	return currentHealth
}

// StartHealthMonitor pings mongo and the session store once immediately and
// then every minute, until ctx is cancelled.
func StartHealthMonitor(ctx context.Context, sessions *redis.Client, mongoClient *mongo.Client) {
	check := func() {
		status := HealthStatus{
			Mongo:     mongoClient.Ping(ctx, nil) == nil,
			Sessions:  sessions.Ping(ctx).Err() == nil,
			CheckedAt: time.Now(),
		}
		if !status.Mongo || !status.Sessions {
			GetLogger().Warn("dependency health check failed",
				zap.Bool("mongo", status.Mongo),
				zap.Bool("sessions", status.Sessions))
		}
		healthMu.Lock()
		currentHealth = status
		healthMu.Unlock()
	}

	go func() {
		check()
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				check()
			}
		}
	}()
}
