package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "./config/local.yaml"

type Config struct {
	Env         string   `yaml:"env" env:"ENV" env-default:"prod"`
	ErrorLog    string   `yaml:"error_log" env-default:"errors.log"`
	CORSOrigins []string `yaml:"cors_origins" env-default:"http://localhost:5173"`
	HTTPServer  `yaml:"http_server"`
	DBUser      string `yaml:"db_user" env:"DB_USER" env-required:"true"`
	DBPassword  string `yaml:"db_password" env:"DB_PASSWORD"`
	DBHost      string `yaml:"db_host" env:"DB_HOST" env-default:"localhost"`
	DBPort      int    `yaml:"db_port" env:"DB_PORT" env-default:"3306"`
	DBName      string `yaml:"db_name" env:"DB_NAME" env-required:"true"`
	ParseTime   bool   `yaml:"parse_time" env-default:"true"`

	Redis    Redis    `yaml:"redis"`
	Auth     Auth     `yaml:"auth"`
	Business Business `yaml:"business"`
	Sweep    Sweep    `yaml:"sweep"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:4001"`
	Timeout     time.Duration `yaml:"timeout"  env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout"  env-default:"60s"`
}

type Redis struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env-default:"0"`
	TTL      time.Duration `yaml:"ttl" env-default:"24h"`
}

type Auth struct {
	JWTSecret  string `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	AdminLogin string `yaml:"admin_login" env:"ADMIN_LOGIN"`
	AdminPass  string `yaml:"admin_pass" env:"ADMIN_PASS"`
}

// Business: константы расчёта зарплаты, вынесены в конфиг без изменения смысла.
type Business struct {
	TokensPerDollar     float64 `yaml:"tokens_per_dollar" env-default:"20"`
	SoloDivisor         float64 `yaml:"solo_divisor" env-default:"4"`
	PairDivisor         float64 `yaml:"pair_divisor" env-default:"6"`
	DefaultExchangeRate float64 `yaml:"default_exchange_rate" env-default:"0"`
}

type Sweep struct {
	Enabled bool   `yaml:"enabled" env-default:"true"`
	Spec    string `yaml:"spec" env-default:"5 0 * * *"`
}

func MustConfig() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return &cfg
}
