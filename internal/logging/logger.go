// Package logging builds the console logger used by forumtext commands.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Levels accepted by New.
const (
	LevelNone   = "none"
	LevelNormal = "normal"
	LevelDebug  = "debug"
)

// New returns a console logger writing to w. Scraped text owns stdout, so
// callers pass stderr here. An empty level means normal.
func New(level string, w io.Writer, color bool) (*zap.Logger, error) {
	var enabler zapcore.LevelEnabler
	switch level {
	case LevelNone:
		return zap.NewNop(), nil
	case LevelNormal, "":
		enabler = zapcore.InfoLevel
	case LevelDebug:
		enabler = zapcore.DebugLevel
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	if color {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(zapcore.AddSync(w)), enabler)
	return zap.New(core), nil
}

// EnableColorOutput reports whether stream is a terminal that can show
// coloured levels.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
