package health

import (
	"context"
	"fmt"
)

// SessionStats is the subset of replay session state the checker inspects.
type SessionStats interface {
	IsOpened() bool
	Faulted() bool
}

// SessionChecker reports an open session whose producer has faulted.
type SessionChecker struct {
	session SessionStats
}

// NewSessionChecker creates a session health checker.
func NewSessionChecker(session SessionStats) *SessionChecker {
	return &SessionChecker{session: session}
}

func (c *SessionChecker) Name() string {
	return "session"
}

func (c *SessionChecker) Check(ctx context.Context) error {
	if c.session.IsOpened() && c.session.Faulted() {
		return fmt.Errorf("replay session producer faulted")
	}
	return nil
}
