// internal/logger/logger.go
//
// Structured JSON logger (Zap + Lumberjack).
//
// Context
// -------
// The storefront writes lifecycle and error events to one JSON log per
// day under `<root>/logs/YYYY-MM-DD.log`.  When running in an interactive
// TTY we tee the same events, colorized, to stdout.  Rotation,
// compression, and retention are handled by Lumberjack; no external
// log-rotate job is required.
//
// Verification faults, sign-in failures, and downstream fetch errors are
// logged here and only here; none of them ever reach a storefront
// visitor (see the fail-open contract in internal/auth).
//
// Usage
// -----
//
//	log, err := logger.New(cfg.Paths.Root, runningInTTY())
//	if err != nil { … }
//	log.Infow("storefront online", "addr", addr)
//
// Notes
// -----
// • Zap core uses ISO-8601 timestamps and lowercase levels.
// • STOREFRONT_LOG_LEVEL=debug lowers the threshold for both sinks.
// • Errors are written to the same sink via `ErrorOutput`.
// • Oxford commas, two spaces after periods.
package logger

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a *zap.SugaredLogger that writes JSON to /logs/YYYY-MM-DD.log.
// When tee == true, a colored console core is also attached.  The logger
// is installed as the process-wide default via zap.ReplaceGlobals.
func New(rootDir string, tee bool) (*zap.SugaredLogger, error) {
	logDir := filepath.Join(rootDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}

	level := levelFromEnv()

	fileName := time.Now().Format("2006-01-02") + ".log"
	fileSink := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, fileName),
		MaxSize:    50, // MB
		MaxBackups: 7,  // keep last seven files
		MaxAge:     14, // days
		Compress:   true,
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		MessageKey:   "msg",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}
	jsonCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(fileSink),
		level,
	)

	cores := []zapcore.Core{jsonCore}

	if tee {
		consoleCore := zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.AddSync(os.Stdout),
			level,
		)
		cores = append(cores, consoleCore)
	}

	z := zap.New(
		zapcore.NewTee(cores...),
		zap.ErrorOutput(zapcore.AddSync(fileSink)),
	).Sugar()

	// Make this the global logger so zap.S() works everywhere after startup.
	zap.ReplaceGlobals(z.Desugar())

	z.Infow("logger online", "tee", tee, "level", level.String())
	return z, nil
}

// levelFromEnv maps STOREFRONT_LOG_LEVEL onto a zap level, defaulting to
// info on unset or unknown values.
func levelFromEnv() zapcore.Level {
	switch strings.ToLower(os.Getenv("STOREFRONT_LOG_LEVEL")) {
	case "debug":
		return zap.DebugLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}
