package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"jobsearch-engine/internal/scrape/types"
)

const (
	// "Service" groups the app's secrets in the OS keychain.
	KeyringService = "jobsearch-engine"
)

func BoardKeyringAccount(site types.Site) string {
	return fmt.Sprintf("jobsearch:board:%s", site)
}

// GetBoardKey returns the stored API key for a job board, or "" when
// none is set. Boards without a key are scraped unauthenticated.
func GetBoardKey(site types.Site) string {
	key, err := keyring.Get(KeyringService, BoardKeyringAccount(site))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(key)
}

func SetBoardKey(site types.Site, key string) error {
	if !types.Known(site) {
		return fmt.Errorf("unknown site %q", site)
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("api key is empty")
	}
	return keyring.Set(KeyringService, BoardKeyringAccount(site), key)
}

func DeleteBoardKey(site types.Site) error {
	if !types.Known(site) {
		return fmt.Errorf("unknown site %q", site)
	}
	return keyring.Delete(KeyringService, BoardKeyringAccount(site))
}
