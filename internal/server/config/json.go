package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/taskkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// either "15m" strings or integer nanoseconds. Keys absent from the file
// leave the current value in place.
type JsonConfig struct {
	HTTPAddr         string         `json:"http_addr"`
	GRPCAddr         string         `json:"grpc_addr"`
	StorageDriver    string         `json:"storage_driver"`
	DatabaseDSN      string         `json:"database_dsn"`
	AccessSecret     string         `json:"access_secret"`
	RefreshSecret    string         `json:"refresh_secret"`
	AccessTTL        timex.Duration `json:"access_ttl"`
	RefreshTTL       timex.Duration `json:"refresh_ttl"`
	BcryptCost       int            `json:"bcrypt_cost"`
	LogLevel         string         `json:"log_level"`
	RotationRegistry string         `json:"rotation_registry"`
	PurgeInterval    timex.Duration `json:"purge_interval"`
	RedisAddr        string         `json:"redis_addr"`
	RedisPassword    string         `json:"redis_password"`
	RedisDB          int            `json:"redis_db"`
	S3User           string         `json:"s3_user"`
	S3Password       string         `json:"s3_password"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3Endpoint       string         `json:"s3_endpoint"`
	PresignTTL       timex.Duration `json:"presign_ttl"`
}

func toJSON(c *Config) *JsonConfig {
	return &JsonConfig{
		HTTPAddr:         c.HTTPAddr,
		GRPCAddr:         c.GRPCAddr,
		StorageDriver:    c.StorageDriver,
		DatabaseDSN:      c.DatabaseDSN,
		AccessSecret:     c.AccessSecret,
		RefreshSecret:    c.RefreshSecret,
		AccessTTL:        timex.Duration{Duration: c.AccessTTL},
		RefreshTTL:       timex.Duration{Duration: c.RefreshTTL},
		BcryptCost:       c.BcryptCost,
		LogLevel:         c.LogLevel,
		RotationRegistry: c.RotationRegistry,
		PurgeInterval:    timex.Duration{Duration: c.PurgeInterval},
		RedisAddr:        c.RedisAddr,
		RedisPassword:    c.RedisPassword,
		RedisDB:          c.RedisDB,
		S3User:           c.S3User,
		S3Password:       c.S3Password,
		S3Bucket:         c.S3Bucket,
		S3Region:         c.S3Region,
		S3Endpoint:       c.S3Endpoint,
		PresignTTL:       timex.Duration{Duration: c.PresignTTL},
	}
}

func (j *JsonConfig) apply(c *Config) {
	c.HTTPAddr = j.HTTPAddr
	c.GRPCAddr = j.GRPCAddr
	c.StorageDriver = j.StorageDriver
	c.DatabaseDSN = j.DatabaseDSN
	c.AccessSecret = j.AccessSecret
	c.RefreshSecret = j.RefreshSecret
	c.AccessTTL = j.AccessTTL.Duration
	c.RefreshTTL = j.RefreshTTL.Duration
	c.BcryptCost = j.BcryptCost
	c.LogLevel = j.LogLevel
	c.RotationRegistry = j.RotationRegistry
	c.PurgeInterval = j.PurgeInterval.Duration
	c.RedisAddr = j.RedisAddr
	c.RedisPassword = j.RedisPassword
	c.RedisDB = j.RedisDB
	c.S3User = j.S3User
	c.S3Password = j.S3Password
	c.S3Bucket = j.S3Bucket
	c.S3Region = j.S3Region
	c.S3Endpoint = j.S3Endpoint
	c.PresignTTL = j.PresignTTL.Duration
}

// parseJSON overlays the file at path onto config. An empty path is a no-op.
func parseJSON(config *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	j := toJSON(config)
	if err := json.Unmarshal(data, j); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	j.apply(config)

	return nil
}
