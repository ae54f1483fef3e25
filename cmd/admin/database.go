package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"resumeforge/internal/config"
	"resumeforge/internal/database"
)

// dbFlags 允许命令行覆盖数据库连接，缺省读取与 API 相同的环境变量。
var dbFlags struct {
	host     string
	port     int
	name     string
	user     string
	password string
	sslMode  string
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&dbFlags.host, "db-host", "", "数据库 Host（默认读 DATABASE_HOST）")
	flags.IntVar(&dbFlags.port, "db-port", 0, "数据库 Port（默认读 DATABASE_PORT）")
	flags.StringVar(&dbFlags.name, "db-name", "", "数据库名（默认读 POSTGRES_DB）")
	flags.StringVar(&dbFlags.user, "db-user", "", "数据库用户（默认读 POSTGRES_USER）")
	flags.StringVar(&dbFlags.password, "db-password", "", "数据库密码（默认读 POSTGRES_PASSWORD）")
	flags.StringVar(&dbFlags.sslMode, "db-sslmode", "", "数据库 SSLMODE（默认读 DATABASE_SSLMODE）")
}

func openDatabase() (*gorm.DB, error) {
	_ = godotenv.Load()

	cfg, err := loadDatabaseConfig(os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("load database config: %w", err)
	}
	db, err := database.InitDatabase(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return db, nil
}

// loadDatabaseConfig 合并命令行参数与环境变量，参数优先。
func loadDatabaseConfig(getenv func(string) string) (config.DatabaseConfig, error) {
	pick := func(flag string, envs ...string) string {
		if v := strings.TrimSpace(flag); v != "" {
			return v
		}
		for _, env := range envs {
			if v := strings.TrimSpace(getenv(env)); v != "" {
				return v
			}
		}
		return ""
	}

	cfg := config.DatabaseConfig{
		Host:     pick(dbFlags.host, "DATABASE_HOST"),
		Port:     dbFlags.port,
		Name:     pick(dbFlags.name, "POSTGRES_DB", "DB_NAME"),
		User:     pick(dbFlags.user, "POSTGRES_USER", "DB_USER"),
		Password: pick(dbFlags.password, "POSTGRES_PASSWORD", "DB_PASSWORD"),
		SSLMode:  pick(dbFlags.sslMode, "DATABASE_SSLMODE"),
	}
	if cfg.Port <= 0 {
		if env := strings.TrimSpace(getenv("DATABASE_PORT")); env != "" {
			p, err := strconv.Atoi(env)
			if err != nil {
				return config.DatabaseConfig{}, fmt.Errorf("parse DATABASE_PORT: %w", err)
			}
			cfg.Port = p
		}
	}

	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port <= 0 {
		cfg.Port = 5432
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	if cfg.Name == "" {
		return config.DatabaseConfig{}, errors.New("database name is required (POSTGRES_DB)")
	}
	if cfg.User == "" {
		return config.DatabaseConfig{}, errors.New("database user is required (POSTGRES_USER)")
	}
	if cfg.Password == "" {
		return config.DatabaseConfig{}, errors.New("database password is required (POSTGRES_PASSWORD)")
	}
	return cfg, nil
}
