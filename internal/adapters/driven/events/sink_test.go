package events

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/macrorun/internal/core/domain"
	"github.com/custodia-labs/macrorun/internal/logger"
)

func captureLog(t *testing.T, verbose bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetVerbose(verbose)
	t.Cleanup(func() {
		logger.SetOutput(os.Stderr)
		logger.SetVerbose(false)
	})
	return &buf
}

func TestLogSink_Levels(t *testing.T) {
	buf := captureLog(t, true)
	sink := NewLogSink()

	sink.Emit(domain.Event{Stage: domain.Stage1, Kind: domain.EventLog, Level: domain.LevelInfo, Message: "File opened"})
	sink.Emit(domain.Event{Stage: domain.Stage1, Kind: domain.EventLog, Level: domain.LevelWarn, Message: "Khalilmacro error"})
	sink.Emit(domain.Event{Stage: domain.Stage2, Kind: domain.EventLog, Level: domain.LevelError, Message: "save failed"})

	out := buf.String()
	assert.Contains(t, out, "[INFO] [stage1] File opened")
	assert.Contains(t, out, "[WARN] [stage1] Khalilmacro error")
	assert.Contains(t, out, "[ERROR] [stage2] save failed")
}

func TestLogSink_SessionEventsHaveNoStageTag(t *testing.T) {
	buf := captureLog(t, true)

	NewLogSink().Emit(domain.Event{Kind: domain.EventLog, Level: domain.LevelInfo, Message: "Excel application started"})

	out := buf.String()
	assert.Contains(t, out, "[INFO] Excel application started")
	assert.NotContains(t, out, "unknown")
}

func TestLogSink_QuietHidesInfo(t *testing.T) {
	buf := captureLog(t, false)
	sink := NewLogSink()

	sink.Emit(domain.Event{Stage: domain.Stage1, Kind: domain.EventLog, Level: domain.LevelInfo, Message: "noise"})
	sink.Emit(domain.Event{Stage: domain.Stage1, Kind: domain.EventProgressStarted})
	sink.Emit(domain.Event{Stage: domain.Stage1, Kind: domain.EventLog, Level: domain.LevelWarn, Message: "kept"})

	out := buf.String()
	assert.NotContains(t, out, "noise")
	assert.NotContains(t, out, "progress_started")
	assert.Contains(t, out, "kept")
}

func TestLogSink_FailedEventsOnlyWhenVerbose(t *testing.T) {
	buf := captureLog(t, false)
	sink := NewLogSink()

	sink.Emit(domain.Event{Stage: domain.Stage1, Kind: domain.EventFailed, Level: domain.LevelError, Message: "Failed to process file: boom"})
	assert.Empty(t, buf.String())

	logger.SetVerbose(true)
	sink.Emit(domain.Event{Stage: domain.Stage1, Kind: domain.EventFailed, Level: domain.LevelError, Message: "Failed to process file: boom"})
	assert.Contains(t, buf.String(), "[DEBUG] [stage1] Failed to process file: boom")
}

func TestLogSink_SkipsEmptyMessages(t *testing.T) {
	buf := captureLog(t, true)

	NewLogSink().Emit(domain.Event{Stage: domain.Stage1, Kind: domain.EventLog, Level: domain.LevelError})

	assert.Empty(t, buf.String())
}

func TestFanout_ForwardsInOrder(t *testing.T) {
	var got []string
	first := Func(func(e domain.Event) { got = append(got, "first:"+e.Message) })
	second := Func(func(e domain.Event) { got = append(got, "second:"+e.Message) })

	fan := NewFanout(first, nil, second)
	fan.Emit(domain.Event{Message: "hello"})

	assert.Equal(t, []string{"first:hello", "second:hello"}, got)
}

func TestFanout_Add(t *testing.T) {
	count := 0
	fan := NewFanout()
	fan.Emit(domain.Event{})
	fan.Add(Func(func(domain.Event) { count++ }))
	fan.Add(nil)
	fan.Emit(domain.Event{})

	assert.Equal(t, 1, count)
}

func TestFunc_Nil(t *testing.T) {
	var f Func
	assert.NotPanics(t, func() { f.Emit(domain.Event{}) })
}
