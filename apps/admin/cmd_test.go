package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killingspree001/lautechmarket/core/catalog"
	"github.com/killingspree001/lautechmarket/core/upload"
	inmemdb "github.com/killingspree001/lautechmarket/storage/database/inmem"
	"github.com/killingspree001/lautechmarket/testutil"
)

var prodRepo catalog.Repository

type fakeUploader struct {
	failing map[string]bool
}

func (u fakeUploader) Upload(_ context.Context, account upload.Account, file upload.File, folder string) (upload.Result, error) {
	if u.failing[account.CloudName] {
		return upload.Result{}, fmt.Errorf("%s: quota exceeded", account.CloudName)
	}
	return upload.Result{URL: "https://res.cloudinary.com/" + account.CloudName + "/image/upload/" + folder + "/" + file.Name}, nil
}

func setup(t *testing.T, failing ...string) (*commandLine, *bytes.Buffer) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	prodRepo = inmemdb.NewProductRepository(inmemdb.Open())
	uploader := fakeUploader{failing: make(map[string]bool)}
	for _, c := range failing {
		uploader.failing[c] = true
	}
	accounts := []upload.Account{
		{CloudName: "cloud-a", UploadPreset: "preset-a"},
		{CloudName: "cloud-b", UploadPreset: "preset-b"},
	}

	var out bytes.Buffer
	return &commandLine{
		ctx:     context.Background(),
		out:     &out,
		db:      db,
		catalog: catalog.NewService(prodRepo, testutil.NewValidator()),
		uploads: upload.NewClient(accounts, uploader, testutil.NewLogger()),
	}, &out
}

func writeFile(t *testing.T, name string, content []byte) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli, out := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
			assert.Contains(t, out.String(), "Usage:")
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	origRun := gooseRunFunc
	defer func() { gooseRunFunc = origRun }()
	gooseRunFunc = func(_ context.Context, command string, db *sql.DB, args ...string) error {
		if db == nil {
			return fmt.Errorf("no db")
		}
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "vendor", "sql"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}

	t.Run("no database", func(t *testing.T) {
		cli.db = nil
		assert.Equal(t, errNoDatabase, cli.run([]string{"admin", "migrate", "up"}))
	})
}

func Test_commandLine_seed(t *testing.T) {
	valid := writeFile(t, "products.json", []byte(`[
		{"name": "Notebook", "price": 500, "category": "Stationery", "whatsapp_number": "+234 800 000 0000", "vendor_name": "Ada"},
		{"name": "Calculator", "price": 12500, "category": "Electronics", "in_stock": false, "whatsapp_number": "08012345678", "vendor_name": "Chidi"}
	]`))
	invalid := writeFile(t, "invalid.json", []byte(`[
		{"name": "Notebook", "price": 500, "category": "Stationery", "whatsapp_number": "+234 800 000 0000", "vendor_name": "Ada"},
		{"name": " ", "price": 100, "category": "Stationery", "whatsapp_number": "+234 800 000 0000", "vendor_name": "Ada"}
	]`))

	tests := []struct {
		name      string
		args      []string
		wantErr   bool
		wantCount int
		wantOut   string
	}{
		{name: "no file", args: []string{"seed"}, wantErr: true},
		{name: "missing file", args: []string{"seed", "-file", filepath.Join(t.TempDir(), "nope.json")}, wantErr: true},
		{name: "invalid product", args: []string{"seed", "-file", invalid}, wantErr: true},
		{name: "seed", args: []string{"seed", "-file", valid}, wantCount: 2, wantOut: "seeded 2 products\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, out := setup(t)
			err := cli.run(append([]string{"admin"}, tt.args...))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			prods, err := prodRepo.ListProducts(context.Background())
			require.NoError(t, err)
			assert.Len(t, prods, tt.wantCount)
			assert.Equal(t, tt.wantOut, out.String())
		})
	}
}

func Test_commandLine_accounts(t *testing.T) {
	cli, out := setup(t)

	require.NoError(t, cli.run([]string{"admin", "accounts"}))
	assert.Equal(t, "2 account(s) configured\n  1. cloud-a\n  2. cloud-b\n", out.String())
}

func Test_commandLine_upload(t *testing.T) {
	png := writeFile(t, "logo.png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	txt := writeFile(t, "notes.txt", []byte("buy pencils"))

	t.Run("no file", func(t *testing.T) {
		cli, _ := setup(t)
		assert.Equal(t, errHelp, cli.run([]string{"admin", "upload"}))
	})

	t.Run("not an image", func(t *testing.T) {
		cli, _ := setup(t)
		assert.Equal(t, errNotAnImage, cli.run([]string{"admin", "upload", "-file", txt}))
	})

	t.Run("default folder", func(t *testing.T) {
		cli, out := setup(t)
		require.NoError(t, cli.run([]string{"admin", "upload", "-file", png}))
		assert.Equal(t,
			"https://res.cloudinary.com/cloud-a/image/upload/products/logo.png\n"+
				"https://res.cloudinary.com/cloud-a/image/upload/w_400,q_auto,f_auto/products/logo.png\n",
			out.String(),
		)
	})

	t.Run("failover", func(t *testing.T) {
		cli, out := setup(t, "cloud-a")
		require.NoError(t, cli.run([]string{"admin", "upload", "-file", png, "-folder", "banners"}))
		assert.Contains(t, out.String(), "https://res.cloudinary.com/cloud-b/image/upload/banners/logo.png\n")
	})

	t.Run("all accounts fail", func(t *testing.T) {
		cli, out := setup(t, "cloud-a", "cloud-b")
		err := cli.run([]string{"admin", "upload", "-file", png})
		var failed *upload.AllAccountsFailedError
		require.ErrorAs(t, err, &failed)
		assert.Equal(t, 2, failed.Attempts)
		assert.Empty(t, out.String())
	})
}
