package ole

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/macrorun/internal/core/domain"
)

func TestNewHost_DefaultProgID(t *testing.T) {
	assert.Equal(t, domain.DefaultProgID, NewHost("").progID)
	assert.Equal(t, "Excel.Application.16", NewHost("Excel.Application.16").progID)
}

func TestHost_Launch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	session, err := NewHost("").Launch(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, session)
}

func TestHost_Launch_WithoutCOM(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("COM is available on Windows")
	}

	session, err := NewHost("").Launch(context.Background())

	assert.Error(t, err)
	assert.Nil(t, session)
}
