package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlreadyHandledDropsRedeliveries(t *testing.T) {
	assert.False(t, alreadyHandled("interaction-1"))
	assert.True(t, alreadyHandled("interaction-1"))
	assert.False(t, alreadyHandled("interaction-2"))
}

func TestAlreadyHandledForgetsOldEntries(t *testing.T) {
	require.False(t, alreadyHandled("stale-interaction"))

	seenMu.Lock()
	seen["stale-interaction"] = time.Now().Add(-seenRetention - time.Minute)
	seenMu.Unlock()

	// Past the retention window the id is treated as new again; the
	// interaction token is long expired by then anyway.
	assert.False(t, alreadyHandled("stale-interaction"))
}

func TestCommandsAreAdminOnly(t *testing.T) {
	for _, cmd := range Commands() {
		require.NotNil(t, cmd.DefaultMemberPermissions, cmd.Name)
		assert.Equal(t, adminPerm, *cmd.DefaultMemberPermissions, cmd.Name)
	}
}
