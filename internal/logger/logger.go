package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. Packages derive entries from it with
// WithField/WithFields instead of creating their own loggers.
var Log = logrus.New()

type Entry = logrus.Entry

type Fields = logrus.Fields

// Init configures the JSON formatter and the level. LOG_LEVEL takes any
// logrus level name; DEBUG=true is kept as a shortcut for debug output.
func Init() {
	Log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	Log.SetOutput(os.Stdout)

	level := logrus.InfoLevel
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		level = lvl
	}
	if os.Getenv("DEBUG") == "true" {
		level = logrus.DebugLevel
	}
	Log.SetLevel(level)
}

// Silence discards all output. Tests call it to keep soft-failure warnings
// out of the test log.
func Silence() {
	Log.SetOutput(io.Discard)
}
