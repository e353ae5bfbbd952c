package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/stepauth/stepauth/internal/identity"
	"github.com/stepauth/stepauth/internal/models"

	"go.uber.org/zap"
)

// FilesystemChannel writes passcodes to local files instead of delivering
// them. Development profile only.
type FilesystemChannel struct {
	directory string
}

func NewFilesystemChannel(config models.FilesystemDeliveryConfiguration) *FilesystemChannel {
	if err := os.MkdirAll(config.Directory, 0750); err != nil {
		zap.L().Fatal("Failed to create delivery directory", zap.Error(err))
	}
	return &FilesystemChannel{directory: config.Directory}
}

func (c *FilesystemChannel) Name() string {
	return ChannelFilesystem
}

func (c *FilesystemChannel) Target(account identity.Account) string {
	if account.Email != "" {
		return account.Email
	}
	return account.PhoneNumber
}

func (c *FilesystemChannel) Send(_ context.Context, target, code string) error {
	entry := map[string]any{
		"target":    target,
		"code":      code,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	content, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal passcode entry: %w", err)
	}

	filename := fmt.Sprintf("%d.json", time.Now().UnixNano())
	path := filepath.Join(c.directory, filename)

	if err = os.WriteFile(path, content, 0600); err != nil {
		return fmt.Errorf("failed to write passcode file: %w", err)
	}

	zap.L().Info("Passcode written to filesystem",
		zap.String("path", path),
		zap.String("target", target),
	)

	return nil
}
