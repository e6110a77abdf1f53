package config

import (
	"fmt"
	"math"

	"github.com/spf13/viper"
)

// Config - структура для хранения конфигураций приложения
type Config struct {
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`
	PostgresConn  string `mapstructure:"POSTGRES_CONN"`
	MigrationURL  string `mapstructure:"MIGRATION_URL"`
	JWTSecret     string `mapstructure:"JWT_SECRET"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
	LogFormat     string `mapstructure:"LOG_FORMAT"`

	// Веса составного ранга предложений, в сумме должны давать 1.
	EvalPriceWeight float64 `mapstructure:"EVAL_PRICE_WEIGHT"`
	EvalScoreWeight float64 `mapstructure:"EVAL_SCORE_WEIGHT"`
	EvalMaxScore    float64 `mapstructure:"EVAL_MAX_SCORE"`

	// Политика фиксации: требовать ли полного распределения всех позиций.
	AwardRequireFullAllocation bool `mapstructure:"AWARD_REQUIRE_FULL_ALLOCATION"`
}

// LoadConfig загружает конфигурацию из файла
func LoadConfig(path string) (cfg Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.SetDefault("SERVER_ADDRESS", ":8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("EVAL_PRICE_WEIGHT", 0.6)
	viper.SetDefault("EVAL_SCORE_WEIGHT", 0.4)
	viper.SetDefault("EVAL_MAX_SCORE", 10.0)
	viper.SetDefault("AWARD_REQUIRE_FULL_ALLOCATION", false)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}
	err = viper.Unmarshal(&cfg)
	if err != nil {
		return
	}
	err = cfg.Validate()
	return
}

// Validate проверяет согласованность настроек движка.
func (c Config) Validate() error {
	if c.EvalPriceWeight < 0 || c.EvalScoreWeight < 0 {
		return fmt.Errorf("evaluation weights must be non-negative")
	}
	if math.Abs(c.EvalPriceWeight+c.EvalScoreWeight-1.0) > 1e-9 {
		return fmt.Errorf("evaluation weights must sum to 1, got %f + %f",
			c.EvalPriceWeight, c.EvalScoreWeight)
	}
	if c.EvalMaxScore <= 0 {
		return fmt.Errorf("EVAL_MAX_SCORE must be positive")
	}
	return nil
}
