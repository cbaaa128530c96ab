package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithContext_ReturnsResult(t *testing.T) {
	got, err := withContext(context.Background(), func() (string, error) {
		return "rows", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "rows", got)

	_, err = withContext(context.Background(), func() (string, error) {
		return "", errors.New("boom")
	})
	assert.EqualError(t, err, "boom")
}

func TestWithContext_AbandonsHungCall(t *testing.T) {
	release := make(chan struct{})
	finished := make(chan struct{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := withContext(ctx, func() (int, error) {
		defer close(finished)
		<-release
		return 1, nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)

	// the abandoned call still completes without a reader
	close(release)
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("abandoned call did not finish")
	}
}
