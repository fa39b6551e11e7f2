package python

import (
	"os"

	"github.com/sirupsen/logrus"
)

// log is the package debug logger. It stays quiet unless the debug
// environment variable is set, in which case every discovery step is
// traced to stderr.
var log = newLogger()

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.Out = os.Stderr
	logger.Formatter = &logrus.TextFormatter{DisableLevelTruncation: true, DisableTimestamp: true}
	if os.Getenv(debugKey) != "" {
		logger.Level = logrus.DebugLevel
	}
	return logger
}
