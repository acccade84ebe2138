package helpers

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerFormatsByEnv(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "books", "production")
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())

	buf.Reset()
	LogError(logger, "store failed", errors.New("boom"), logrus.Fields{"request_id": "r1"})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "store failed", line["msg"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "r1", line["request_id"])

	dev := newLogger(&buf, "books", "development")
	assert.Equal(t, logrus.DebugLevel, dev.GetLevel())
}

func TestSentryHookWithoutClientIsNoop(t *testing.T) {
	hook := NewSentryHook(nil)
	assert.Contains(t, hook.Levels(), logrus.ErrorLevel)
	entry := logrus.NewEntry(logrus.New()).WithError(errors.New("boom"))
	assert.NoError(t, hook.Fire(entry))
}

func TestInitSentryWithoutDSN(t *testing.T) {
	enabled, err := InitSentry("", "test", "")
	assert.NoError(t, err)
	assert.False(t, enabled)
}

func TestAttachSentryHooksErrorsAndFatalExit(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "books", "production")
	AttachSentry(logger, sentry.NewHub(nil, sentry.NewScope()))

	assert.Len(t, logger.Hooks[logrus.ErrorLevel], 1)
	assert.Len(t, logger.Hooks[logrus.FatalLevel], 1)
	assert.Empty(t, logger.Hooks[logrus.InfoLevel])

	exitCode := -1
	logger.ExitFunc = func(code int) { exitCode = code }
	logger.WithError(errors.New("db down")).Fatal("failed to initialize infrastructure")
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, buf.String(), "failed to initialize infrastructure")
}
