package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ Transport       = TransportFunc(nil)
	_ MetricsRecorder = NopMetricsRecorder{}
	_ Clock           = wallClock{}

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
