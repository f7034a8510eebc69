package health

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Status represents the health status of a component.
type Status string

const (
	StatusOK   Status = "ok"
	StatusDown Status = "down"
)

// Check represents a health check result.
type Check struct {
	Name        string    `json:"name"`
	Status      Status    `json:"status"`
	Message     string    `json:"message,omitempty"`
	LastChecked time.Time `json:"last_checked"`
	DurationMS  float64   `json:"duration_ms"`
}

// Checker is the interface that health checkers must implement.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// Manager manages health checks.
type Manager struct {
	checkers []Checker
	results  map[string]*Check
	mu       sync.RWMutex
	logger   *logrus.Logger
}

// NewManager creates a new health check manager.
func NewManager(logger *logrus.Logger) *Manager {
	return &Manager{
		results: make(map[string]*Check),
		logger:  logger,
	}
}

// Register adds a new health checker.
func (m *Manager) Register(checker Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers = append(m.checkers, checker)
	m.logger.WithField("checker", checker.Name()).Debug("Registered health checker")
}

// RunChecks executes all registered health checks.
func (m *Manager) RunChecks(ctx context.Context) map[string]*Check {
	m.mu.RLock()
	checkers := make([]Checker, len(m.checkers))
	copy(checkers, m.checkers)
	m.mu.RUnlock()

	results := make(map[string]*Check, len(checkers))
	for _, checker := range checkers {
		start := time.Now()
		err := checker.Check(ctx)
		result := &Check{
			Name:        checker.Name(),
			Status:      StatusOK,
			LastChecked: time.Now(),
			DurationMS:  float64(time.Since(start).Microseconds()) / 1000,
		}
		if err != nil {
			result.Status = StatusDown
			result.Message = err.Error()
			m.logger.WithError(err).WithField("checker", checker.Name()).Warn("Health check failed")
		}
		results[result.Name] = result
	}

	m.mu.Lock()
	m.results = results
	m.mu.Unlock()
	return results
}

// Healthy reports whether every registered check passed on the last run.
func (m *Manager) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, check := range m.results {
		if check.Status != StatusOK {
			return false
		}
	}
	return true
}

// Results returns the most recent check results.
func (m *Manager) Results() map[string]*Check {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*Check, len(m.results))
	for name, check := range m.results {
		c := *check
		out[name] = &c
	}
	return out
}

// StartPeriodicChecks runs all checks on an interval until ctx is cancelled.
func (m *Manager) StartPeriodicChecks(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.RunChecks(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.RunChecks(ctx)
		}
	}
}
