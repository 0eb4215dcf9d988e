package upload

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/killingspree001/lautechmarket/core"
)

var ErrNoAccountsConfigured = errors.New("no upload accounts configured")

// AllAccountsFailedError is returned once every configured account failed the same upload.
type AllAccountsFailedError struct {
	Attempts int
	Last     error
}

func (e *AllAccountsFailedError) Error() string {
	return fmt.Sprintf("all %d upload accounts failed: %v", e.Attempts, e.Last)
}

func (e *AllAccountsFailedError) Unwrap() error { return e.Last }

// Client spreads uploads round-robin over its accounts and fails over to the next
// account when one refuses a file.
type Client struct {
	accounts []Account
	uploader Uploader
	logger   core.Logger

	mu     sync.Mutex
	cursor int
}

// NewClient builds a client over accounts; accounts missing credentials are dropped.
func NewClient(accounts []Account, uploader Uploader, logger core.Logger) *Client {
	valid := make([]Account, 0, len(accounts))
	for _, a := range accounts {
		if a.valid() {
			valid = append(valid, a)
		}
	}
	return &Client{
		accounts: valid,
		uploader: uploader,
		logger:   logger,
	}
}

// AccountCount is the number of usable accounts.
func (c *Client) AccountCount() int {
	return len(c.accounts)
}

// Accounts returns a copy of the usable accounts in rotation order.
func (c *Client) Accounts() []Account {
	accounts := make([]Account, len(c.accounts))
	copy(accounts, c.accounts)
	return accounts
}

// Cursor is the index of the account serving the next attempt.
func (c *Client) Cursor() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}

// next returns the account at the cursor and advances it, whatever the outcome of the attempt.
func (c *Client) next() Account {
	c.mu.Lock()
	defer c.mu.Unlock()
	account := c.accounts[c.cursor]
	c.cursor = (c.cursor + 1) % len(c.accounts)
	return account
}

// Upload sends file to the next account, failing over to the following ones in turn.
// at most one request is in flight per call and each account is tried at most once.
func (c *Client) Upload(ctx context.Context, file File, folder string) (Result, error) {
	total := len(c.accounts)
	if total == 0 {
		return Result{}, ErrNoAccountsConfigured
	}
	if folder == "" {
		folder = DefaultFolder
	}

	var lastErr error
	for attempt := 0; attempt < total; attempt++ {
		account := c.next()
		c.logger.Debug(fmt.Sprintf("uploading %q to account %s (%d/%d)", file.Name, account.CloudName, attempt+1, total))

		res, err := c.uploader.Upload(ctx, account, file, folder)
		if err == nil {
			return res, nil
		}
		lastErr = err
		c.logger.Warn(
			fmt.Sprintf("upload failed for account %s", account.CloudName),
			err,
			map[string]interface{}{"account": account.CloudName, "attempt": attempt + 1, "file": file.Name},
		)

		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, errors.Wrap(ctxErr, "uploading")
		}
	}
	return Result{}, &AllAccountsFailedError{Attempts: total, Last: lastErr}
}
