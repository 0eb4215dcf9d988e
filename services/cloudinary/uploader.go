// Package cloudinarysvc sends unsigned uploads to Cloudinary accounts.
package cloudinarysvc

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/pkg/errors"

	"github.com/killingspree001/lautechmarket/core"
	"github.com/killingspree001/lautechmarket/core/upload"
)

var DefaultHost = "https://api.cloudinary.com"

// APIError is an error answer from the upload API.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return "cloudinary: " + e.Message
}

type cloudUploader struct {
	host   string
	client *http.Client

	mu     sync.Mutex
	clouds map[string]*cloudinary.Cloudinary // keyed by cloud name
}

var _ upload.Uploader = (*cloudUploader)(nil) // interface compliance check

// NewUploader returns an upload.Uploader posting to host; the client sets the per attempt timeout.
func NewUploader(host string, client *http.Client) *cloudUploader {
	if host == "" {
		host = DefaultHost
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &cloudUploader{
		host:   strings.TrimRight(host, "/"),
		client: client,
		clouds: make(map[string]*cloudinary.Cloudinary),
	}
}

// NewUploaderFromConfig builds the uploader from the upload section of conf.
func NewUploaderFromConfig(conf *core.Config) *cloudUploader {
	return NewUploader(conf.Upload.BaseURL, &http.Client{Timeout: conf.Upload.Timeout})
}

// cloud returns the SDK instance of account, creating it on first use.
func (up *cloudUploader) cloud(account upload.Account) (*cloudinary.Cloudinary, error) {
	up.mu.Lock()
	defer up.mu.Unlock()

	if cld, ok := up.clouds[account.CloudName]; ok {
		return cld, nil
	}
	// unsigned uploads only need the cloud name
	cld, err := cloudinary.NewFromParams(account.CloudName, "", "")
	if err != nil {
		return nil, errors.Wrapf(err, "configuring cloud %q", account.CloudName)
	}
	cld.Upload.Config.API.UploadPrefix = up.host
	cld.Upload.Client = *up.client
	up.clouds[account.CloudName] = cld
	return cld, nil
}

func (up *cloudUploader) Upload(ctx context.Context, account upload.Account, file upload.File, folder string) (upload.Result, error) {
	cld, err := up.cloud(account)
	if err != nil {
		return upload.Result{}, err
	}

	res, err := cld.Upload.UnsignedUpload(ctx, bytes.NewReader(file.Content), account.UploadPreset, uploader.UploadParams{
		Folder: folder,
	})
	if err != nil {
		return upload.Result{}, errors.Wrap(err, "sending upload")
	}
	if res.Error.Message != "" {
		return upload.Result{}, &APIError{Message: res.Error.Message}
	}
	if res.SecureURL == "" {
		return upload.Result{}, errors.New("cloudinary: response without secure_url")
	}

	return upload.Result{
		URL:      res.SecureURL,
		PublicID: res.PublicID,
		Width:    res.Width,
		Height:   res.Height,
	}, nil
}
