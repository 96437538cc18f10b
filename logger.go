package roomplane

import "go.uber.org/zap"

// logger receives debug records from plane assembly and composition. It
// discards everything until SetLogger is called.
var logger = zap.NewNop()

// SetLogger routes the package's log records to l. Passing nil restores the
// no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l.Named("roomplane")
}
