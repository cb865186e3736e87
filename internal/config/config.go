package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel          string `yaml:"log-level" env-default:"info"`
	HTTPPort          string `yaml:"http-port" env-default:"9090"`
	SocketPort        string `yaml:"socket-port" env-default:"3001"`
	Redis             Redis  `yaml:"redis"`
	SQLiteStoragePath string `yaml:"sqlite-storage-path" env-default:"./users.db"`
	JWTSecretKey      string `yaml:"jwt-secret-key"`
	Room              Room   `yaml:"room"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

type Room struct {
	// WaitingTimeout bounds how long a room may sit without a guest.
	WaitingTimeout time.Duration `yaml:"waiting-timeout" env-default:"10m"`
	// FinishedTTL keeps a finished room readable before eviction.
	FinishedTTL     time.Duration `yaml:"finished-ttl" env-default:"5m"`
	CleanupInterval time.Duration `yaml:"cleanup-interval" env-default:"30s"`
	// DisconnectGrace delays the win-by-disconnect after a socket drops.
	// Zero finalizes immediately.
	DisconnectGrace time.Duration `yaml:"disconnect-grace" env-default:"0s"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
