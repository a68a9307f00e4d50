// Package logging builds the process-wide zap logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.elastic.co/ecszap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger writing to stdout. format is "json" (ECS fields) or
// "console"; level is any zapcore level name.
func New(level, format string) (*zap.Logger, error) {
	return newLogger(os.Stdout, level, format)
}

func newLogger(w io.Writer, level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	sink := zapcore.AddSync(w)
	var core zapcore.Core
	switch strings.ToLower(format) {
	case "", "json":
		core = ecszap.NewCore(ecszap.NewDefaultEncoderConfig(), sink, lvl)
	case "console":
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		core = zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), sink, lvl)
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}

	return zap.New(core, zap.AddCaller()), nil
}
