package tests

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/killingspree001/lautechmarket/apps/api/echo"
	"github.com/killingspree001/lautechmarket/core/upload"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func pngContent(size int) []byte {
	content := make([]byte, size)
	copy(content, pngHeader)
	return content
}

func newUploadRequest(t *testing.T, token, filename string, content []byte, folder string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	if folder != "" {
		require.NoError(t, mw.WriteField("folder", folder))
	}
	require.NoError(t, mw.Close())

	req, rec := newAuthRequest(http.MethodPost, "/v1/uploads", token, body.Bytes())
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req, rec
}

func uploadResponse(cloud, folder, filename string) UploadResponse {
	url := "https://res.cloudinary.com/" + cloud + "/image/upload/v1/" + folder + "/" + filename
	return UploadResponse{
		Result: upload.Result{
			URL:      url,
			PublicID: folder + "/" + filename,
			Width:    64,
			Height:   64,
		},
		OptimizedURL: "https://res.cloudinary.com/" + cloud + "/image/upload/w_400,q_auto,f_auto/v1/" + folder + "/" + filename,
	}
}

func TestUploadApi_Create(t *testing.T) {
	vendor, admin, shopper := vendorToken(t), adminToken(t), shopperToken(t)

	tests := []struct {
		httpTest
		filename string
		content  []byte
		folder   string
		failing  []string
	}{
		{
			httpTest: httpTest{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
			filename: "logo.png",
			content:  pngContent(64),
		},
		{
			httpTest: httpTest{
				name:     "vendors only",
				token:    shopper,
				wantCode: http.StatusForbidden,
				wantData: marchallObj(t, httpErr{Error: "permission denied"}),
			},
			filename: "logo.png",
			content:  pngContent(64),
		},
		{
			httpTest: httpTest{
				name:     "default folder",
				token:    vendor,
				wantCode: http.StatusCreated,
				wantData: marchallObj(t, uploadResponse("cloud-a", "products", "logo.png")),
			},
			filename: "logo.png",
			content:  pngContent(64),
		},
		{
			httpTest: httpTest{
				name:     "admin with folder",
				token:    admin,
				wantCode: http.StatusCreated,
				wantData: marchallObj(t, uploadResponse("cloud-a", "banners/home", "hero.png")),
			},
			filename: "hero.png",
			content:  pngContent(64),
			folder:   "banners/home",
		},
		{
			httpTest: httpTest{
				name:     "failover",
				token:    vendor,
				wantCode: http.StatusCreated,
				wantData: marchallObj(t, uploadResponse("cloud-b", "products", "logo.png")),
			},
			filename: "logo.png",
			content:  pngContent(64),
			failing:  []string{"cloud-a"},
		},
		{
			httpTest: httpTest{
				name:     "all accounts fail",
				token:    vendor,
				wantCode: http.StatusBadGateway,
				wantData: marchallObj(t, httpErr{Error: "image upload failed on every account"}),
			},
			filename: "logo.png",
			content:  pngContent(64),
			failing:  []string{"cloud-a", "cloud-b"},
		},
		{
			httpTest: httpTest{
				name:     "missing file",
				token:    vendor,
				wantCode: http.StatusBadRequest,
				wantData: []byte(`{"file":"this field is required"}`),
			},
		},
		{
			httpTest: httpTest{
				name:     "not an image",
				token:    vendor,
				wantCode: http.StatusBadRequest,
				wantData: []byte(`{"file":"the file must be an image"}`),
			},
			filename: "notes.txt",
			content:  []byte("buy pencils"),
		},
		{
			httpTest: httpTest{
				name:     "invalid folder",
				token:    vendor,
				wantCode: http.StatusBadRequest,
				wantData: []byte(`{"folder":"folder may only contain letters, digits, underscores, dashes and slashes"}`),
			},
			filename: "logo.png",
			content:  pngContent(64),
			folder:   "../secrets",
		},
		{
			httpTest: httpTest{
				name:     "too large",
				token:    vendor,
				wantCode: http.StatusRequestEntityTooLarge,
				wantData: marchallObj(t, httpErr{Error: "file too large"}),
			},
			filename: "huge.png",
			content:  pngContent(4 << 10),
		},
		{
			httpTest: httpTest{
				name:     "declared size over limit",
				token:    vendor,
				wantCode: http.StatusRequestEntityTooLarge,
				wantData: marchallObj(t, httpErr{Error: "file too large"}),
			},
			filename: "big.png",
			content:  pngContent(1536),
		},
		{
			httpTest: httpTest{
				name:     "at the limit",
				token:    vendor,
				wantCode: http.StatusCreated,
				wantData: marchallObj(t, uploadResponse("cloud-a", "products", "edge.png")),
			},
			filename: "edge.png",
			content:  pngContent(1 << 10),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newApp(prodRepo, accounts...)
			defer func() { _ = srv.Close() }()
			uploader.fail(tt.failing...)

			req, rec := newUploadRequest(t, tt.token, tt.filename, tt.content, tt.folder)
			srv.ServeHTTP(rec, req)
			checkCodeAndData(t, tt.httpTest, rec)
		})
	}
	uploader.fail()
}

func TestUploadApi_Rotation(t *testing.T) {
	srv := newApp(prodRepo, accounts...)
	defer func() { _ = srv.Close() }()
	uploader.fail()
	token := vendorToken(t)

	for _, cloud := range []string{"cloud-a", "cloud-b", "cloud-a"} {
		req, rec := newUploadRequest(t, token, "logo.png", pngContent(64), "")
		srv.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusCreated, wantData: marchallObj(t, uploadResponse(cloud, "products", "logo.png"))}, rec)
	}
	assert.Equal(t, []string{"cloud-a", "cloud-b", "cloud-a"}, uploader.calls)
}

func TestUploadApi_NotConfigured(t *testing.T) {
	srv := newApp(prodRepo)
	defer func() { _ = srv.Close() }()

	req, rec := newUploadRequest(t, vendorToken(t), "logo.png", pngContent(64), "")
	srv.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusServiceUnavailable,
		wantData: marchallObj(t, httpErr{Error: "image uploads are not configured"}),
	}, rec)
}

func TestUploadApi_Accounts(t *testing.T) {
	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name:     "admins only",
			token:    vendorToken(t),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "lists cloud names",
			token:    adminToken(t),
			wantCode: http.StatusOK,
			wantData: []byte(`{"count":2,"accounts":["cloud-a","cloud-b"]}`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/uploads/accounts", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
