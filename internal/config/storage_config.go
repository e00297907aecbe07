package config

// BackendType selects where the persisted session snapshot lives.
type BackendType string

const (
	BackendMemory BackendType = "memory"
	BackendFile   BackendType = "file"
	BackendRedis  BackendType = "redis"
)

type StorageConfig interface {
	GetStorageBackend() BackendType
	GetStateDir() string
	GetRedisAddr() string
	GetRedisDB() int
	GetRedisPrefix() string
}

type Storage struct {
	Backend     BackendType `env:"SESSION_STORAGE, default=file" validate:"oneof=memory file redis"`
	StateDir    string      `env:"STATE_DIR, default=./data" validate:"required"`
	RedisAddr   string      `env:"REDIS_ADDR, default=localhost:6379" validate:"required_if=Backend redis"`
	RedisDB     int         `env:"REDIS_DB, default=0" validate:"gte=0"`
	RedisPrefix string      `env:"REDIS_PREFIX, default=techtrendz:"`
}

var _ StorageConfig = Storage{}

func (s Storage) GetStorageBackend() BackendType {
	return s.Backend
}

func (s Storage) GetStateDir() string {
	return s.StateDir
}

func (s Storage) GetRedisAddr() string {
	return s.RedisAddr
}

func (s Storage) GetRedisDB() int {
	return s.RedisDB
}

func (s Storage) GetRedisPrefix() string {
	return s.RedisPrefix
}
