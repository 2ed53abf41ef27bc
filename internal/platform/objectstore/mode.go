package objectstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

type Mode string

const (
	ModeLocal       Mode = "local"
	ModeGCS         Mode = "gcs"
	ModeGCSEmulator Mode = "gcs_emulator"
)

type Config struct {
	Mode         Mode
	LocalDir     string
	Bucket       string
	EmulatorHost string
	// Credentials is a service-account JSON blob or a path to one.
	Credentials string
}

type ConfigError struct {
	Mode   string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid object storage config (mode=%q): %s", e.Mode, e.Reason)
}

// ParseMode defaults to local, and to the emulator when a host is set.
func ParseMode(raw, emulatorHost string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		if strings.TrimSpace(emulatorHost) != "" {
			return ModeGCSEmulator, nil
		}
		return ModeLocal, nil
	case ModeLocal:
		return ModeLocal, nil
	case ModeGCS:
		return ModeGCS, nil
	case ModeGCSEmulator:
		return ModeGCSEmulator, nil
	default:
		return "", &ConfigError{Mode: raw, Reason: "allowed: local, gcs, gcs_emulator"}
	}
}

func (c Config) Validate() error {
	switch c.Mode {
	case ModeLocal:
		if strings.TrimSpace(c.LocalDir) == "" {
			return &ConfigError{Mode: string(c.Mode), Reason: "UPLOAD_DIR is required"}
		}
	case ModeGCS:
		if strings.TrimSpace(c.Bucket) == "" {
			return &ConfigError{Mode: string(c.Mode), Reason: "PDF_GCS_BUCKET is required"}
		}
	case ModeGCSEmulator:
		if strings.TrimSpace(c.Bucket) == "" {
			return &ConfigError{Mode: string(c.Mode), Reason: "PDF_GCS_BUCKET is required"}
		}
		u, err := url.Parse(strings.TrimSpace(c.EmulatorHost))
		if err != nil || u.Scheme == "" || u.Host == "" {
			return &ConfigError{Mode: string(c.Mode), Reason: "STORAGE_EMULATOR_HOST must be an absolute URL like http://fake-gcs:4443"}
		}
	default:
		return &ConfigError{Mode: string(c.Mode), Reason: "unknown mode"}
	}
	return nil
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Mode == ModeLocal {
		return NewLocal(log, cfg.LocalDir)
	}
	return NewGCS(ctx, log, cfg)
}
