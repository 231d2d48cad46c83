/*
- @Author: aztec
- @Date: 2024-02-19 10:02:47
- @Description: 日志
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package common

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	return l
}

func Logger() *logrus.Logger {
	return logger
}

func SetLogger(l *logrus.Logger) {
	if l != nil {
		logger = l
	}
}

func LogNormal(prefix, format string, args ...interface{}) {
	logger.Infof("[%s] %s", prefix, fmt.Sprintf(format, args...))
}

func LogDebug(prefix, format string, args ...interface{}) {
	logger.Debugf("[%s] %s", prefix, fmt.Sprintf(format, args...))
}

func LogError(prefix, format string, args ...interface{}) {
	logger.Errorf("[%s] %s", prefix, fmt.Sprintf(format, args...))
}
