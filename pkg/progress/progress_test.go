package progress

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextMonitor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewMonitor(ctx, nil)

	assert.False(t, m.IsCanceled())
	m.SubTask("tables")
	m.Worked(2)
	m.Worked(3)
	assert.Equal(t, int64(5), m.Done())

	cancel()
	assert.True(t, m.IsCanceled())
}

func TestNop(t *testing.T) {
	assert.False(t, Nop().IsCanceled())
	assert.NotNil(t, OrNop(nil))

	m := NewMonitor(context.Background(), nil)
	assert.Same(t, m, OrNop(m))
}
