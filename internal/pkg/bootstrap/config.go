package bootstrap

import (
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"bistro/internal/pkg/database"
	"bistro/internal/pkg/logger"
	"bistro/internal/pkg/tracing"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config 服务的全部配置，从 YAML 文件加载后再用环境变量覆盖
type Config struct {
	App   AppConfig      `yaml:"app"`
	Log   logger.Options `yaml:"log"`
	Infra InfraConfig    `yaml:"infra"`
}

type AppConfig struct {
	ServiceName string `yaml:"service_name"`
	Port        int    `yaml:"port"`
	// Timezone 决定日历按哪个时区划分月份
	Timezone      string `yaml:"timezone"`
	PublishEvents bool   `yaml:"publish_events"`
}

type InfraConfig struct {
	Jaeger    tracing.Options  `yaml:"jaeger"`
	Database  database.Options `yaml:"database"`
	Redis     RedisConfig      `yaml:"redis"`
	Kafka     KafkaConfig      `yaml:"kafka"`
	Zookeeper ZookeeperConfig  `yaml:"zookeeper"`
	Nacos     NacosConfig      `yaml:"nacos"`
	Lock      LockConfig       `yaml:"lock"`
}

type RedisConfig struct {
	Addrs    string `yaml:"addrs"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers     []string `yaml:"brokers"`
	OrderTopic  string   `yaml:"order_topic"`
	CouponTopic string   `yaml:"coupon_topic"`
}

type ZookeeperConfig struct {
	Servers        string        `yaml:"servers"`
	SessionTimeout time.Duration `yaml:"session_timeout"`
}

type NacosConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServerAddrs string `yaml:"server_addrs"`
	Namespace   string `yaml:"namespace"`
	Group       string `yaml:"group"`
}

type LockConfig struct {
	Backend string        `yaml:"backend"` // local | redis | zookeeper
	Wait    time.Duration `yaml:"wait"`
	TTL     time.Duration `yaml:"ttl"`
}

var currentConfig atomic.Pointer[Config]

// GetCurrentConfig 返回当前生效的配置，未加载时返回默认值
func GetCurrentConfig() *Config {
	if cfg := currentConfig.Load(); cfg != nil {
		return cfg
	}
	return defaultConfig()
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			ServiceName: "bistro-service",
			Port:        8080,
			Timezone:    "UTC",
		},
		Log: logger.Options{Level: "info", Format: "json"},
		Infra: InfraConfig{
			Database: database.Options{Driver: "memory"},
			Kafka: KafkaConfig{
				OrderTopic:  "order-events",
				CouponTopic: "coupon-events",
			},
			Nacos: NacosConfig{Group: "DEFAULT_GROUP"},
			Lock:  LockConfig{Backend: "local", Wait: 5 * time.Second, TTL: 10 * time.Second},
		},
	}
}

// LoadConfig 读取 path 指定的 YAML 文件。文件不存在时使用默认值
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	case os.IsNotExist(err):
		logger.L().Warn().Str("path", path).Msg("config file not found, using defaults")
	default:
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	applyEnv(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	currentConfig.Store(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.App.ServiceName = getEnv("SERVICE_NAME", cfg.App.ServiceName)
	if port, err := strconv.Atoi(getEnv("PORT", "")); err == nil {
		cfg.App.Port = port
	}
	cfg.App.Timezone = getEnv("APP_TIMEZONE", cfg.App.Timezone)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)

	cfg.Infra.Jaeger.Endpoint = getEnv("JAEGER_ENDPOINT", cfg.Infra.Jaeger.Endpoint)
	cfg.Infra.Database.Driver = getEnv("DB_DRIVER", cfg.Infra.Database.Driver)
	cfg.Infra.Database.DSN = getEnv("DB_DSN", cfg.Infra.Database.DSN)
	cfg.Infra.Redis.Addrs = getEnv("REDIS_ADDRS", cfg.Infra.Redis.Addrs)
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.Infra.Kafka.Brokers = strings.Split(brokers, ",")
	}
	cfg.Infra.Zookeeper.Servers = getEnv("ZK_SERVERS", cfg.Infra.Zookeeper.Servers)
	cfg.Infra.Lock.Backend = getEnv("LOCK_BACKEND", cfg.Infra.Lock.Backend)

	cfg.Infra.Nacos.ServerAddrs = getEnv("NACOS_SERVER_ADDRS", cfg.Infra.Nacos.ServerAddrs)
	cfg.Infra.Nacos.Namespace = getEnv("NACOS_NAMESPACE", cfg.Infra.Nacos.Namespace)
	cfg.Infra.Nacos.Group = getEnv("NACOS_GROUP", cfg.Infra.Nacos.Group)
}

func (c *Config) validate() error {
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return errors.Wrapf(err, "invalid app.timezone %q", c.App.Timezone)
	}
	switch c.Infra.Lock.Backend {
	case "local":
	case "redis":
		if c.Infra.Redis.Addrs == "" {
			return errors.New("lock backend redis requires infra.redis.addrs")
		}
	case "zookeeper":
		if c.Infra.Zookeeper.Servers == "" {
			return errors.New("lock backend zookeeper requires infra.zookeeper.servers")
		}
	default:
		return errors.Errorf("unknown lock backend %q", c.Infra.Lock.Backend)
	}
	if c.App.PublishEvents && len(c.Infra.Kafka.Brokers) == 0 {
		return errors.New("publish_events requires infra.kafka.brokers")
	}
	return nil
}

// Location 返回配置的时区
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnv 是一个内部辅助函数，从环境变量中读取配置。
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
