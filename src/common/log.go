package common

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const DefaultLogDir = "./log/"

var Logger *zap.Logger

type LogOptions struct {
	Dir     string
	File    bool
	Debug   bool
	MaxSize int // MB
	MaxAge  int // days
}

func init() {
	Logger = NewLogger(LogOptions{Debug: true})
}

func InitLogger(opts LogOptions) {
	Logger = NewLogger(opts)
}

// NewLogger always writes human readable lines to stdout. With File set the same
// entries are also written as JSON into a rotated file under Dir.
func NewLogger(opts LogOptions) *zap.Logger {
	level := zapcore.InfoLevel
	if opts.Debug {
		level = zapcore.DebugLevel
	}
	consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.AddSync(zapcore.Lock(os.Stdout)), level),
	}
	if opts.File {
		dir := opts.Dir
		if dir == "" {
			dir = DefaultLogDir
		}
		maxSize, maxAge := opts.MaxSize, opts.MaxAge
		if maxSize == 0 {
			maxSize = 100
		}
		if maxAge == 0 {
			maxAge = 7
		}
		w := zapcore.AddSync(&lumberjack.Logger{
			Filename: filepath.Join(dir, "app.log"),
			MaxSize:  maxSize,
			MaxAge:   maxAge,
			Compress: true,
		})
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			w,
			zapcore.InfoLevel,
		))
	}
	return zap.New(zapcore.NewTee(cores...))
}
