package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	SRS      SRSConfig      `mapstructure:"srs"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// SRSConfig contains tunable scheduling parameters. Zero values mean the
// engine defaults apply; values set here override them.
type SRSConfig struct {
	PassThreshold      float64 `mapstructure:"pass_threshold" validate:"omitempty,gt=0,lte=5"`
	MaxHalfLifeDays    float64 `mapstructure:"max_half_life_days" validate:"omitempty,gte=1"`
	MaxIntervalDays    int     `mapstructure:"max_interval_days" validate:"omitempty,gte=1"`
	RetentionThreshold float64 `mapstructure:"retention_threshold" validate:"omitempty,gt=0,lte=1"`
}
