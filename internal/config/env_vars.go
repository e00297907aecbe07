package config

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
}

type EnvVars struct {
	AppName string `env:"APP_NAME, default=TechTrendz"`
	Env     string `env:"ENV, default=DEV" validate:"oneof=DEV TEST PROD"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	return e.Env
}
