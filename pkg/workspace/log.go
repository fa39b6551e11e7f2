package workspace

import (
	"os"

	"github.com/sirupsen/logrus"
)

// log is the package debug logger, quiet unless PYSCOUT_DEBUG is set.
var log = newLogger()

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.Out = os.Stderr
	logger.Formatter = &logrus.TextFormatter{DisableLevelTruncation: true, DisableTimestamp: true}
	if os.Getenv("PYSCOUT_DEBUG") != "" {
		logger.Level = logrus.DebugLevel
	}
	return logger
}
