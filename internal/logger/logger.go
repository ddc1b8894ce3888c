package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New creates a configured logrus logger. Development environments get
// human-readable text at debug level; everything else logs JSON at info.
func New(appName, env string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	if env == "dev" || env == "development" {
		l.SetLevel(logrus.DebugLevel)
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetLevel(logrus.InfoLevel)
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	l.WithFields(logrus.Fields{"app": appName, "env": env}).Info("logger initialized")
	return l
}
