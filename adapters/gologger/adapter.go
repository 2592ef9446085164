package gologger

import (
	job "github.com/goliatone/go-job"
	glog "github.com/goliatone/go-logger/glog"
)

const TrackingLoggerName = "exolix.tracking"

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

// ToJobProvider maps a glog provider to the go-job logger provider contract.
func ToJobProvider(provider glog.LoggerProvider) job.LoggerProvider {
	if provider == nil {
		return nil
	}
	return job.GoLoggerProvider(provider)
}

// ToJobLogger maps a glog logger to the go-job logger contract.
func ToJobLogger(logger glog.Logger) job.Logger {
	if logger == nil {
		return nil
	}
	return job.GoLogger(logger)
}

// ResolveForTracking returns the logger for the transaction refresh worker and
// the go-job bridge for the queue that feeds it.
func ResolveForTracking(
	provider glog.LoggerProvider,
	logger glog.Logger,
) (glog.Logger, job.Logger) {
	_, resolved := Resolve(TrackingLoggerName, provider, logger)
	resolved = glog.Ensure(resolved)
	return resolved, ToJobLogger(resolved)
}
