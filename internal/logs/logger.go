package logs

import (
	"github.com/sirupsen/logrus"
)

// Logger is the process-wide logger. Call Init before use to apply
// configuration; the zero setup logs text at info level.
var Logger = logrus.New()

// Options controls logger behaviour.
type Options struct {
	Level  string // trace|debug|info|warning|error|fatal
	Format string // text|json
}

// Init configures the process-wide logger.
func Init(o Options) {
	level, err := logrus.ParseLevel(o.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)

	if o.Format == "json" {
		Logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
