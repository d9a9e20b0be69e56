package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/kakera-app/kakera-server/internal/config"
	"github.com/kakera-app/kakera-server/internal/logger"
	"github.com/kakera-app/kakera-server/internal/media/files"
)

// ProvideMediaStorage provides the on-disk storage for uploaded fragments.
func ProvideMediaStorage(i do.Injector) (*files.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := files.NewStorage(cfg.Storage.DataPath)
	if err != nil {
		return nil, fmt.Errorf("media storage: %w", err)
	}

	log.Info("Media storage initialized", "path", storage.BasePath())

	return storage, nil
}
