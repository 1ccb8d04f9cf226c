package status

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollect(t *testing.T) {
	snap := Collect(context.Background(), true, 2)

	assert.Equal(t, "appstore", snap.App)
	assert.NotEmpty(t, snap.Version)
	assert.Equal(t, runtime.GOOS, snap.OS)
	assert.True(t, snap.Privileged)
	assert.Equal(t, 2, snap.ActiveInstalls)
	assert.NotEmpty(t, snap.Timestamp)
}
