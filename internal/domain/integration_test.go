package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenExpired(t *testing.T) {
	now := time.Date(2026, time.January, 7, 12, 0, 0, 0, time.UTC)
	safety := 90 * time.Second

	fresh := &IntegrationAccount{ExpiresAt: now.Add(time.Hour).Unix()}
	assert.False(t, fresh.TokenExpired(now, safety))

	expiringSoon := &IntegrationAccount{ExpiresAt: now.Add(30 * time.Second).Unix()}
	assert.True(t, expiringSoon.TokenExpired(now, safety), "tokens inside the safety margin count as expired")

	expired := &IntegrationAccount{ExpiresAt: now.Add(-time.Hour).Unix()}
	assert.True(t, expired.TokenExpired(now, safety))
}
