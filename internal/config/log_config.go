package config

type LogConfig interface {
	GetLogLevel() string
	GetLogPretty() bool
}

type Log struct {
	Level  string `env:"LOG_LEVEL, default=info" validate:"oneof=trace debug info warn error"`
	Pretty bool   `env:"LOG_PRETTY, default=true"`
}

var _ LogConfig = Log{}

func (l Log) GetLogLevel() string {
	return l.Level
}

func (l Log) GetLogPretty() bool {
	return l.Pretty
}
