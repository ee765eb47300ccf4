package logger

import (
	"io"
	"os"
	"sync"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

var (
	log = logrus.New()
	mu  sync.Mutex
)

func init() {
	log.SetFormatter(&prefixed.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		ForceFormatting: true,
	})
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.InfoLevel)
}

// Init configures the global log level from a verbosity count and,
// when filePath is set, mirrors output to a rotating log file.
func Init(verbosity int, filePath string) {
	mu.Lock()
	defer mu.Unlock()

	log.SetLevel(levelFromVerbosity(verbosity))

	if filePath != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   filePath,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     30,
		}))
	}
}

// SetOutput replaces the log sink. Used by quiet mode and tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	log.SetOutput(w)
}

// GetLogger returns a component-scoped log entry.
func GetLogger(prefix string) *logrus.Entry {
	return log.WithField("prefix", prefix)
}

func levelFromVerbosity(v int) logrus.Level {
	switch {
	case v <= 0:
		return logrus.InfoLevel
	case v == 1:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}
