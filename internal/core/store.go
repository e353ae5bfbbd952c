package core

import (
	"github.com/stepauth/stepauth/internal/models"
	"github.com/stepauth/stepauth/internal/store"

	"go.uber.org/zap"
)

// NewStore connects to the shared state backend. The returned store serves
// both login sessions and password-reset records.
func NewStore(config models.StoreConfiguration) *store.RueidisStore {
	s, err := store.NewRueidisStore(config.Redis)
	if err != nil {
		zap.L().Fatal("Failed to connect to the state store",
			zap.Strings("hosts", config.Redis.Hosts),
			zap.Error(err))
	}
	return s
}
