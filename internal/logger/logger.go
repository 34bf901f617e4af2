// internal/logger/logger.go
//
// Structured JSON logger (Zap + Lumberjack).
//
// Context
// -------
// Stagehand writes build and launch lifecycle events to one JSON log per
// day under `<root>/logs/bootstrap-YYYY-MM-DD.log`.  When running in an
// interactive TTY the same events are teed, colorized, to stdout so an
// operator watching the build sees the gate decisions live.  Rotation,
// compression, and retention are handled by Lumberjack.
//
// Usage
// -----
//
//	log, err := logger.New(cfg.Paths.Root, runningInTTY(), quiet)
//	if err != nil { … }
//	log.Infow("secret gate passed", "source", "literal")
//
// Notes
// -----
// • Zap core uses ISO-8601 timestamps and lowercase levels.
// • quiet raises the console threshold to Warn; the file sink always
//   records Info so a failed build leaves a full trail.
package logger

import (
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a *zap.SugaredLogger writing JSON to
// /logs/bootstrap-YYYY-MM-DD.log.  When tee == true, a colored console
// core is also attached.  The logger is installed as the process-wide
// default via zap.ReplaceGlobals.
func New(rootDir string, tee, quiet bool) (*zap.SugaredLogger, error) {
	logDir := filepath.Join(rootDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}

	fileSink := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "bootstrap-"+time.Now().Format("2006-01-02")+".log"),
		MaxSize:    20, // MB; a one-shot build writes far less
		MaxBackups: 7,
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

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewJSONEncoder(encCfg),
			zapcore.AddSync(fileSink),
			zap.InfoLevel,
		),
	}

	if tee {
		consoleLevel := zap.InfoLevel
		if quiet {
			consoleLevel = zap.WarnLevel
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.AddSync(os.Stdout),
			consoleLevel,
		))
	}

	z := zap.New(
		zapcore.NewTee(cores...),
		zap.ErrorOutput(zapcore.AddSync(fileSink)),
	).Sugar()

	// Make this the global logger so zap.S() works everywhere after startup.
	zap.ReplaceGlobals(z.Desugar())

	return z, nil
}
