package state

import "github.com/sirupsen/logrus"

// Alerter shows a modal message to the merchant.
type Alerter interface {
	Alert(title, message string)
}

type AlertFunc func(title, message string)

func (f AlertFunc) Alert(title, message string) { f(title, message) }

// LogAlerter writes alerts to the log, for headless front ends.
type LogAlerter struct {
	Log *logrus.Logger
}

func (a LogAlerter) Alert(title, message string) {
	log := a.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log.WithField("title", title).Warn(message)
}

const (
	titleError   = "Error"
	titleSuccess = "Success"
)

func orDefault(a Alerter, log *logrus.Logger) Alerter {
	if a != nil {
		return a
	}
	return LogAlerter{Log: log}
}

func orStandard(log *logrus.Logger) *logrus.Logger {
	if log != nil {
		return log
	}
	return logrus.StandardLogger()
}
