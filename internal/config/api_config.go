package config

import "time"

type APIConfig interface {
	GetAPIBaseURL() string
	GetPaymentPublicKey() string
	GetRequestTimeout() time.Duration
	GetRefreshTimeout() time.Duration
}

type API struct {
	BaseURL          string        `env:"API_BASE_URL, required" validate:"required,url"`
	PaymentPublicKey string        `env:"PAYMENT_PUBLIC_KEY"`
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT, default=15s" validate:"gt=0"`
	RefreshTimeout   time.Duration `env:"REFRESH_TIMEOUT, default=10s" validate:"gt=0"`
}

var _ APIConfig = API{}

func (a API) GetAPIBaseURL() string {
	return a.BaseURL
}

func (a API) GetPaymentPublicKey() string {
	return a.PaymentPublicKey
}

func (a API) GetRequestTimeout() time.Duration {
	return a.RequestTimeout
}

func (a API) GetRefreshTimeout() time.Duration {
	return a.RefreshTimeout
}
