// Package logger provides scheduler job logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// JobLogger provides dedicated logging for scheduled jobs.
type JobLogger struct {
	*logrus.Entry
}

// NewJobLogger creates a new job logger.
func NewJobLogger(baseLogger *logrus.Logger) *JobLogger {
	return &JobLogger{
		Entry: baseLogger.WithField("component", "scheduler"),
	}
}

// LogJobStarted logs the start of a scheduled job run.
func (jl *JobLogger) LogJobStarted(jobName string) {
	jl.WithFields(logrus.Fields{
		"job_name":   jobName,
		"event_type": "started",
	}).Info("Scheduled job started")
}

// LogJobCompleted logs a successful job run.
func (jl *JobLogger) LogJobCompleted(jobName string, durationMs float64) {
	jl.WithFields(logrus.Fields{
		"job_name":        jobName,
		"event_type":      "completed",
		"job_duration_ms": durationMs,
	}).Info("Scheduled job completed")
}

// LogJobFailed logs a failed job run.
func (jl *JobLogger) LogJobFailed(jobName string, err error) {
	jl.WithFields(logrus.Fields{
		"job_name":   jobName,
		"event_type": "failed",
		"error":      err.Error(),
	}).Error("Scheduled job failed")
}
