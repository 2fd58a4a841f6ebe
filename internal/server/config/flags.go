package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/taskkeeper/internal/flagx"
)

// parseFlags overlays command-line flags onto config. Only flags registered
// here are considered; -c/-config and anything unknown are filtered out
// first with flagx.FilterArgs.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("taskkeeper", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "http-addr", config.HTTPAddr, "HTTP listen address")
	fs.StringVar(&config.GRPCAddr, "a", config.GRPCAddr, "gRPC listen address")
	fs.StringVar(&config.StorageDriver, "storage", config.StorageDriver, "storage driver: postgres or memory")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "PostgreSQL DSN")

	fs.StringVar(&config.AccessSecret, "access-secret", config.AccessSecret, "HMAC secret for access tokens")
	fs.StringVar(&config.RefreshSecret, "refresh-secret", config.RefreshSecret, "HMAC secret for refresh tokens")
	fs.DurationVar(&config.AccessTTL, "access-ttl", config.AccessTTL, "access token lifetime")
	fs.DurationVar(&config.RefreshTTL, "refresh-ttl", config.RefreshTTL, "refresh token lifetime")
	fs.IntVar(&config.BcryptCost, "bcrypt-cost", config.BcryptCost, "bcrypt work factor")

	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "debug, info, warn or error")

	fs.StringVar(&config.RotationRegistry, "rotation-registry", config.RotationRegistry, "none, postgres, redis or memory")
	fs.DurationVar(&config.PurgeInterval, "purge-interval", config.PurgeInterval, "how often retired refresh tokens are purged")
	fs.StringVar(&config.RedisAddr, "redis-addr", config.RedisAddr, "Redis address")
	fs.StringVar(&config.RedisPassword, "redis-password", config.RedisPassword, "Redis password")
	fs.IntVar(&config.RedisDB, "redis-db", config.RedisDB, "Redis database number")

	fs.StringVar(&config.S3User, "u", config.S3User, "S3 access key")
	fs.StringVar(&config.S3Password, "p", config.S3Password, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3Endpoint, "e", config.S3Endpoint, "S3 base endpoint")
	fs.DurationVar(&config.PresignTTL, "presign-ttl", config.PresignTTL, "presigned URL lifetime")

	var allowed []string
	fs.VisitAll(func(f *flag.Flag) {
		allowed = append(allowed, "-"+f.Name, "--"+f.Name)
	})

	if err := fs.Parse(flagx.FilterArgs(args, allowed)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
