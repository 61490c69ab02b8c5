package log

import (
	"fmt"
	"io"
	"os"

	"github.com/MinterTeam/incentives-engine/config"
	"github.com/tendermint/tendermint/libs/cli/flags"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	logger = log.NewNopLogger()
)

// NewLogger builds the process logger described by cfg.
func NewLogger(cfg *config.Config) (log.Logger, error) {
	var dest io.Writer = os.Stdout

	if cfg.LogPath != "stdout" {
		file, err := os.OpenFile(cfg.LogPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)

		if err != nil {
			return nil, err
		}

		dest = file
	}

	var l log.Logger

	switch cfg.LogFormat {
	case config.LogFormatJSON:
		l = log.NewTMJSONLogger(log.NewSyncWriter(dest))
	case config.LogFormatPlain:
		l = log.NewTMLogger(log.NewSyncWriter(dest))
	default:
		return nil, fmt.Errorf("unsupported log format %q", cfg.LogFormat)
	}

	return flags.ParseLogLevel(cfg.LogLevel, l, "info")
}

func InitLog(cfg *config.Config) {
	l, err := NewLogger(cfg)

	if err != nil {
		panic(err)
	}

	SetLogger(l)
}

func SetLogger(l log.Logger) {
	logger = l
}

func Logger() log.Logger {
	return logger
}

func Info(msg string, ctx ...interface{}) {
	logger.Info(msg, ctx...)
}

func Error(msg string, ctx ...interface{}) {
	logger.Error(msg, ctx...)
}

func Fatal(msg string, ctx ...interface{}) {
	logger.Error(msg, ctx...)
	os.Exit(1)
}

func With(keyvals ...interface{}) log.Logger {
	return logger.With(keyvals...)
}
