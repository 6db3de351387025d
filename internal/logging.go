package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogOptions describes logger construction parameters
type LogOptions struct {
	Level            string
	Format           string
	OutputPaths      []string
	ErrorOutputPaths []string
}

// NewLogger builds a zap logger from options; unknown levels fall back to info
func NewLogger(opts LogOptions) (*zap.Logger, error) {
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}
	if format != "console" && format != "json" {
		return nil, fmt.Errorf("%w: log format %q", ErrInvalidArgument, opts.Format)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if format == "console" {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	cfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(parseLevel(opts.Level)),
		Encoding:          format,
		EncoderConfig:     encoderCfg,
		OutputPaths:       defaultPaths(opts.OutputPaths, "stderr"),
		ErrorOutputPaths:  defaultPaths(opts.ErrorOutputPaths, "stderr"),
		DisableCaller:     true,
		DisableStacktrace: true,
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// NewCLILogger logs to stderr so stdout carries only command output
func NewCLILogger(config *Config) (*zap.Logger, error) {
	level := config.LogLevel
	if config.Verbose {
		level = "debug"
	}
	return NewLogger(LogOptions{Level: level})
}

// NewMCPLogger logs to $XDG_CACHE_HOME/lngai/mcp.log because stdio belongs to the protocol
func NewMCPLogger(config *Config) (*zap.Logger, error) {
	if err := os.MkdirAll(config.CacheDir, 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	logPath := filepath.Join(config.CacheDir, "mcp.log")
	return NewLogger(LogOptions{
		Level:            config.LogLevel,
		Format:           "json",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
}

func parseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

func defaultPaths(paths []string, fallback string) []string {
	if len(paths) == 0 {
		return []string{fallback}
	}
	return paths
}
