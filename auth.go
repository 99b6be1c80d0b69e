// Package agrimitraauth is the authentication core of the AgriMitra
// farming assistant. It exposes a single façade over two interchangeable
// backends: a hosted Postgres backend and a local on-device fallback used
// when the hosted backend is not configured or reachable.
package agrimitraauth

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/agrimitra/agrimitra-auth/internal/backend/local"
	"github.com/agrimitra/agrimitra-auth/internal/backend/remote"
	"github.com/agrimitra/agrimitra-auth/internal/config"
	"github.com/agrimitra/agrimitra-auth/internal/localstore"
	"github.com/agrimitra/agrimitra-auth/internal/logger"
	"github.com/agrimitra/agrimitra-auth/internal/model"
	"github.com/agrimitra/agrimitra-auth/internal/otp"
	"github.com/agrimitra/agrimitra-auth/internal/repository/postgres"
	"github.com/agrimitra/agrimitra-auth/internal/service"
	"github.com/agrimitra/agrimitra-auth/internal/sms"
	storage "github.com/agrimitra/agrimitra-auth/internal/storage/minio"
	"github.com/agrimitra/agrimitra-auth/internal/token"
)

// Session slot keys. Each backend gets its own slot on one device.
const (
	localSessionKey  = "session"
	remoteSessionKey = "remote_session"
)

// Client bundles the façade with the resources it owns.
type Client struct {
	*service.Auth

	db *postgres.Connection
}

// Close releases the remote connection pool, if one was opened.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// NewFromEnv builds a Client from environment configuration.
func NewFromEnv(ctx context.Context) (*Client, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}
	return New(ctx, cfg, logger.New(cfg.LogLevel))
}

// New wires the configured backends and returns the façade. The local
// backend is always constructed; the remote backend joins as primary when
// its connection parameters are present, real, and not overridden by the
// use-mock flag.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Client, error) {
	smsSender, err := sms.NewSender(cfg.SMS, log)
	if err != nil {
		return nil, err
	}

	tokens := token.NewJWT(cfg.Session.Secret)

	store, err := localstore.New(cfg.Local.Dir)
	if err != nil {
		return nil, err
	}

	localBackend := local.New(
		localstore.NewUserDirectory(store),
		localstore.NewSessionSlot(store, localSessionKey),
		otp.NewService(localstore.NewOTPRecords(store), log),
		smsSender,
		tokens,
		filepath.Join(cfg.Local.Dir, "avatars"),
		log,
	)

	useRemote := !cfg.Remote.UseMock && cfg.Remote.Configured()
	if !useRemote {
		log.Info("auth: using local backend only",
			"use_mock", cfg.Remote.UseMock,
			"remote_configured", cfg.Remote.Configured())
		return &Client{
			Auth: service.NewAuth(localBackend, nil, cfg.Remote.Timeout, log),
		}, nil
	}

	db, err := postgres.NewConnection(ctx, cfg.Remote.DSN)
	if err != nil {
		// A dead remote at startup is the fallback case, not a fatal one.
		log.Error("auth: remote backend unreachable, using local backend only",
			"error", err.Error())
		return &Client{
			Auth: service.NewAuth(localBackend, nil, cfg.Remote.Timeout, log),
		}, nil
	}

	var avatars model.AvatarStore
	if cfg.Storage.Configured() {
		minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
			Secure: cfg.Storage.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
		avatars, err = storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize avatar storage: %w", err)
		}
	}

	userRepo := postgres.NewUserRepository(db)
	remoteBackend := remote.New(
		userRepo,
		userRepo,
		localstore.NewSessionSlot(store, remoteSessionKey),
		otp.NewService(postgres.NewOTPRepository(db), log),
		smsSender,
		tokens,
		avatars,
		log,
	)

	return &Client{
		Auth: service.NewAuth(remoteBackend, localBackend, cfg.Remote.Timeout, log),
		db:   db,
	}, nil
}
