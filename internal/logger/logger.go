package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init builds the production JSON logger. With a file path, output also goes
// to a rotated log file.
func Init(file string) (*zap.Logger, error) {
	if file == "" {
		return zap.NewProduction()
	}

	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	rotated := zapcore.AddSync(&lumberjack.Logger{
		Filename:   file,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     28,
		Compress:   true,
	})
	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), zap.InfoLevel),
		zapcore.NewCore(encoder, rotated, zap.InfoLevel),
	)
	return zap.New(core, zap.AddCaller()), nil
}
