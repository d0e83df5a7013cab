package config

import "fmt"

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// EntitlementConfig controls the entitlement resolution engine.
type EntitlementConfig struct {
	// StoreTimeoutSeconds bounds every persistence call on the read path.
	// A timeout degrades the answer to core-only access instead of failing.
	StoreTimeoutSeconds int `mapstructure:"store_timeout_seconds"`
	// RefreshOnBoot rebuilds the materialized tenant_modules table for all
	// tenants when the server starts.
	RefreshOnBoot bool `mapstructure:"refresh_on_boot"`
	// PopulateQueueSize bounds the fire-and-forget cache population queue.
	PopulateQueueSize int `mapstructure:"populate_queue_size"`
	// PopulateWorkers is the number of background population workers.
	PopulateWorkers int `mapstructure:"populate_workers"`
}

type BusinessConfig struct {
	Timezone string `mapstructure:"timezone"`
}
