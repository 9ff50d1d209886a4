package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/auth"
	"github.com/bookshelfapp/bookshelf-server/internal/config"
	"github.com/bookshelfapp/bookshelf-server/internal/logger"
)

// AuthKey is the hex-encoded token key.
type AuthKey string

// ProvideAuthKey uses the configured key or loads (generating on first run)
// the key persisted under the data path.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Auth.KeyHex != "" {
		log.Info("Authentication key taken from configuration",
			"access_token_duration", cfg.Auth.AccessTokenDuration,
		)
		return AuthKey(cfg.Auth.KeyHex), nil
	}

	key, err := auth.LoadOrGenerateKey(cfg.Store.DataPath)
	if err != nil {
		return "", err
	}

	log.Info("Authentication key loaded",
		"access_token_duration", cfg.Auth.AccessTokenDuration,
	)

	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	authKey := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService(string(authKey), cfg.Auth.AccessTokenDuration)
}
