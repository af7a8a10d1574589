package main

import (
	"github.com/rmrobinson/arrivals/services/ui/tboard/widget"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// WidgetSink implements zapcore.WriteSyncer by showing the latest log line on a widget.
type WidgetSink struct {
	widget *widget.Status
}

// NewWidgetSink creates a new widget logger sink
func NewWidgetSink(widget *widget.Status) *WidgetSink {
	return &WidgetSink{
		widget: widget,
	}
}

// Write saves the contents to the widget
func (s *WidgetSink) Write(p []byte) (n int, err error) {
	s.widget.Refresh(string(p))
	return len(p), nil
}

// Sync is a nop
func (s *WidgetSink) Sync() error { return nil }

func newWidgetLogger(sink *WidgetSink, level zapcore.Level) *zap.Logger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""
	encoderConfig.CallerKey = ""

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), sink, level)
	return zap.New(core)
}
