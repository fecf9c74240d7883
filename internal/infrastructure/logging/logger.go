package logging

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field keys shared by every playground log line
const (
	KeyRunID     = "run_id"
	KeyDigest    = "digest"
	KeySource    = "source"
	KeyComponent = "component"
)

// Logger wraps zap.Logger with the playground's field conventions.
type Logger struct {
	*zap.Logger
}

// Config selects the level and encoding of a logger. Output defaults to
// stderr so command output on stdout stays clean.
type Config struct {
	Level       string // "debug", "info", "warn", "error"
	Development bool
	Output      zapcore.WriteSyncer
}

// New builds a logger: JSON lines in production, colored console lines in
// development. Errors carry stack traces only in development.
func New(cfg Config) (*Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("unknown log level %q", cfg.Level)
		}
	}

	out := cfg.Output
	if out == nil {
		out = zapcore.Lock(os.Stderr)
	}

	var encoder zapcore.Encoder
	opts := []zap.Option{zap.AddCaller(), zap.ErrorOutput(zapcore.Lock(os.Stderr))}
	if cfg.Development {
		encoder = zapcore.NewConsoleEncoder(consoleEncoding())
		opts = append(opts, zap.Development(), zap.AddStacktrace(zapcore.ErrorLevel))
	} else {
		encoder = zapcore.NewJSONEncoder(jsonEncoding())
	}

	core := zapcore.NewCore(encoder, out, zap.NewAtomicLevelAt(level))
	return &Logger{Logger: zap.New(core, opts...)}, nil
}

// NewNop creates a logger that discards everything.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Component returns a child logger tagged with a component name.
func (l *Logger) Component(name string) *Logger {
	return &Logger{Logger: l.Logger.Named(name)}
}

// With returns a child logger carrying fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...)}
}

// Run returns a child logger for one sandbox run.
func (l *Logger) Run(runID string) *Logger {
	return l.With(zap.String(KeyRunID, runID))
}

// Digest tags a log line with the content digest of a reference.
func Digest(digest string) zap.Field {
	return zap.String(KeyDigest, digest)
}

// Source tags a log line with the surface that triggered a run.
func Source(source string) zap.Field {
	return zap.String(KeySource, source)
}

func jsonEncoding() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        KeyComponent,
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

func consoleEncoding() zapcore.EncoderConfig {
	enc := jsonEncoding()
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	enc.EncodeTime = zapcore.TimeEncoderOfLayout(time.TimeOnly)
	enc.EncodeDuration = zapcore.StringDurationEncoder
	return enc
}
