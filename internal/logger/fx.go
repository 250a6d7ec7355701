package logger

import (
	"go.uber.org/fx/fxevent"
)

// GetFxLogger adapts our Logger to fx's lifecycle event logger
func (l *Logger) GetFxLogger() fxevent.Logger {
	return &fxevent.ZapLogger{Logger: l.Desugar()}
}
