package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStage_String(t *testing.T) {
	assert.Equal(t, "stage1", Stage1.String())
	assert.Equal(t, "stage2", Stage2.String())
	assert.Equal(t, "unknown", Stage(0).String())
}

func TestParseStage(t *testing.T) {
	s, err := ParseStage("stage1")
	require.NoError(t, err)
	assert.Equal(t, Stage1, s)

	s, err = ParseStage("2")
	require.NoError(t, err)
	assert.Equal(t, Stage2, s)

	_, err = ParseStage("stage3")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestPipelineState_CanRunStage2(t *testing.T) {
	assert.False(t, StateIdle.CanRunStage2())
	assert.True(t, StateStage1Complete.CanRunStage2())
	assert.True(t, StateStage2Complete.CanRunStage2())
}

func TestTransition(t *testing.T) {
	tests := []struct {
		from    PipelineState
		to      PipelineState
		allowed bool
	}{
		{StateIdle, StateStage1Complete, true},
		{StateIdle, StateStage2Complete, false},
		{StateIdle, StateIdle, true},
		{StateStage1Complete, StateStage1Complete, true},
		{StateStage1Complete, StateStage2Complete, true},
		{StateStage1Complete, StateIdle, true},
		{StateStage2Complete, StateStage2Complete, true},
		{StateStage2Complete, StateStage1Complete, true},
		{StateStage2Complete, StateIdle, true},
		{StateIdle, PipelineState("bogus"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			got, err := Transition(tt.from, tt.to)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, got)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTransition))
			assert.Equal(t, tt.from, got)
		})
	}
}
