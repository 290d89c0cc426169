package session

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"extranet_rates/apperror"
	"extranet_rates/config"
)

// KeyringService is the OS keyring service the extranet password is stored under.
const KeyringService = "extranet_rates"

type Credentials struct {
	Username string
	Password string
}

// ResolveCredentials takes the password from the environment, falling back
// to the OS keyring entry for the username.
func ResolveCredentials(cfg config.SessionConfig) (Credentials, error) {
	if cfg.Username == "" {
		return Credentials{}, apperror.New(apperror.SessionBootstrap, "BOOKING_USERNAME is not set")
	}
	creds := Credentials{Username: cfg.Username, Password: cfg.Password}
	if creds.Password != "" {
		return creds, nil
	}

	secret, err := keyring.Get(KeyringService, cfg.Username)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return Credentials{}, apperror.New(apperror.SessionBootstrap,
				fmt.Sprintf("no password for %s: set BOOKING_PASSWORD or run `keys set`", cfg.Username))
		}
		return Credentials{}, apperror.Wrap(apperror.SessionBootstrap, "keyring lookup failed", err)
	}
	creds.Password = secret
	return creds, nil
}

// StorePassword saves the password in the OS keyring.
func StorePassword(username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("username and password are required")
	}
	return keyring.Set(KeyringService, username, password)
}

func DeletePassword(username string) error {
	return keyring.Delete(KeyringService, username)
}
