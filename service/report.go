package service

import (
	"time"

	"chatrelay/model"
)

type ReportService struct {
	Registry *SessionRegistry
}

// LogUsage writes one summary line with store and registry sizes, run
// daily from the scheduler.
func (r *ReportService) LogUsage() {
	startTime := time.Now()

	users, err := model.CountUsers()
	if err != nil {
		logger.Warnf("[%s] count users error, %s", "scheduled task", err)
		return
	}
	sessions, err := model.CountChatSessions()
	if err != nil {
		logger.Warnf("[%s] count chat sessions error, %s", "scheduled task", err)
		return
	}
	messages, err := model.CountMessages()
	if err != nil {
		logger.Warnf("[%s] count messages error, %s", "scheduled task", err)
		return
	}

	live := 0
	if r.Registry != nil {
		live = r.Registry.Len()
	}

	logger.Infof("[%s] usage report: %d users, %d chat sessions, %d messages, %d live sessions, took %v",
		"scheduled task", users, sessions, messages, live, time.Since(startTime))
}
