package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runForget(t *testing.T, runID string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	forgetCmd.SetOut(&out)
	forgetCmd.SetContext(context.Background())
	require.NoError(t, forgetCmd.Flags().Set("run", runID))
	t.Cleanup(func() { forgetCmd.SetOut(nil) })

	err := forgetCmd.RunE(forgetCmd, nil)
	return out.String(), err
}

func TestForgetWithMemoryBackendReportsNothingPersisted(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "memory")

	out, err := runForget(t, "trip-1")
	require.NoError(t, err)
	assert.Equal(t, "run trip-1 has no persisted memory (SESSION_BACKEND=memory)\n", out)
	assert.NotContains(t, out, "forgotten")
}

func TestForgetRejectsUnknownBackend(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "sqlite")

	_, err := runForget(t, "trip-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported session backend")
}
