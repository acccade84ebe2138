package helpers

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// InitSentry initializes the global Sentry client. It is a no-op when dsn is empty.
func InitSentry(dsn, env, release string) (bool, error) {
	if dsn == "" {
		return false, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      env,
		Release:          release,
		EnableTracing:    true,
		TracesSampleRate: 0.2,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// FlushSentry waits for buffered events to be delivered
func FlushSentry() {
	sentry.Flush(2 * time.Second)
}

// AttachSentry forwards error entries of logger to hub. Fatal exits flush
// pending events first since deferred calls do not run on os.Exit.
func AttachSentry(logger *logrus.Logger, hub *sentry.Hub) {
	logger.AddHook(NewSentryHook(hub))
	logrus.RegisterExitHandler(FlushSentry)
}

// SentryHook forwards error level log entries to Sentry
type SentryHook struct {
	hub *sentry.Hub
}

func NewSentryHook(hub *sentry.Hub) *SentryHook {
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	return &SentryHook{hub: hub}
}

func (h *SentryHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}
}

func (h *SentryHook) Fire(entry *logrus.Entry) error {
	if h.hub.Client() == nil {
		return nil
	}
	h.hub.WithScope(func(scope *sentry.Scope) {
		fields := sentry.Context{"message": entry.Message}
		for k, v := range entry.Data {
			if k == logrus.ErrorKey {
				continue
			}
			fields[k] = v
		}
		scope.SetContext("log", fields)
		if rid, ok := entry.Data["request_id"].(string); ok {
			scope.SetTag("request_id", rid)
		}
		if err, ok := entry.Data[logrus.ErrorKey].(error); ok && err != nil {
			h.hub.CaptureException(err)
			return
		}
		h.hub.CaptureMessage(entry.Message)
	})
	return nil
}
