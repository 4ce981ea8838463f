// Package testutil provides shared helpers for the ledger service's
// tests: deterministic identities, event capture, and envelope-aware
// HTTP assertions.
package testutil

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// NewTestUUID derives a stable UUID from a seed string. Tests on both sides
// of a process boundary can name the same identity without sharing state.
func NewTestUUID(seed string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed))
}

// TestTenantID returns the standard tenant identity used across tests.
func TestTenantID() uuid.UUID {
	return NewTestUUID("test-tenant")
}

// TestUserID returns the standard acting-user identity used across tests.
func TestUserID() uuid.UUID {
	return NewTestUUID("test-user")
}

// RequireEventually polls the condition until it holds or the timeout
// elapses, then fails the test.
func RequireEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...interface{}) {
	t.Helper()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	giveUp := time.After(timeout)

	for {
		if condition() {
			return
		}
		select {
		case <-giveUp:
			require.Fail(t, "Condition not met within timeout", msgAndArgs...)
			return
		case <-ticker.C:
		}
	}
}
