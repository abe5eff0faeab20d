package helpers

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// appHook stamps every entry with the process name so the API, worker and
// CLIs can share one log stream.
type appHook struct{ app string }

func (h appHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h appHook) Fire(e *logrus.Entry) error {
	if _, ok := e.Data["app"]; !ok {
		e.Data["app"] = h.app
	}
	return nil
}

// NewLogger builds the process logger: text with full timestamps in
// development, JSON elsewhere. level overrides the env default when it parses.
func NewLogger(appName, env, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.AddHook(appHook{app: appName})
	if env == "development" {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if level != "" {
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			logger.WithError(err).Warn("ignoring LOG_LEVEL")
		} else {
			logger.SetLevel(lvl)
		}
	}
	logger.WithFields(logrus.Fields{"env": env, "level": logger.GetLevel().String()}).Debug("logger initialized")
	return logger
}

// NewNopLogger returns a logger that discards everything; services fall back to it.
func NewNopLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
