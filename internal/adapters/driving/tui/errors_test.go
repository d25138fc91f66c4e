package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_HavePrefix(t *testing.T) {
	assert.Contains(t, ErrMissingPipeline.Error(), "tui:")
}
