package logger

import (
	"go.uber.org/zap"
)

var log = zap.NewNop()

// Init inicializa el logger global. En "development" usa salida de consola legible.
func Init(env string) {
	var cfg zap.Config
	if env == "development" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "json"            // Logs estructurados en JSON
		cfg.EncoderConfig.TimeKey = "ts" // timestamp
		cfg.EncoderConfig.MessageKey = "msg"
		cfg.EncoderConfig.LevelKey = "level"
		cfg.EncoderConfig.CallerKey = "caller"
	}

	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	log = l.With(zap.String("service", "devcamper"))
}

// Sugar retorna un logger más “friendly” para usar con printf-like
func Sugar() *zap.SugaredLogger {
	return log.Sugar()
}

// Logger retorna el logger estructurado
func Logger() *zap.Logger {
	return log
}
