package upload

import (
	"context"

	"github.com/killingspree001/lautechmarket/core"
)

// DefaultFolder is the destination folder used when none is given.
const DefaultFolder = "products"

type (
	// Account is one image host account.
	Account struct {
		CloudName    string `json:"cloud_name"`
		UploadPreset string `json:"-"`
	}

	Result struct {
		URL      string `json:"url"`
		PublicID string `json:"public_id"`
		Width    int    `json:"width"`
		Height   int    `json:"height"`
	}

	// File is an in-memory file; its content is sent again on every failover attempt.
	File struct {
		Name        string
		ContentType string
		Content     []byte
	}

	// Uploader sends a file to a single account.
	Uploader interface {
		Upload(ctx context.Context, account Account, file File, folder string) (Result, error)
	}
)

func (a Account) valid() bool {
	return a.CloudName != "" && a.UploadPreset != ""
}

// AccountsFromConfig converts the configured accounts, keeping configuration order.
func AccountsFromConfig(conf *core.Config) []Account {
	accounts := make([]Account, 0, len(conf.Upload.Accounts))
	for _, a := range conf.Upload.Accounts {
		accounts = append(accounts, Account{CloudName: a.CloudName, UploadPreset: a.UploadPreset})
	}
	return accounts
}
