package provider

import (
	apperrors "github.com/kbukum/shownotes/errors"
	"github.com/kbukum/shownotes/util"
)

// APIKey reads and cleans the "api_key" factory option, failing with a
// configuration error when it is empty. Factories call it before any
// network client is built so a missing key is never retried.
func APIKey(name string, cfg map[string]any) (string, error) {
	key := util.Secret(cfg, "api_key")
	if key == "" {
		return "", apperrors.MissingCredential(name)
	}
	return key, nil
}
