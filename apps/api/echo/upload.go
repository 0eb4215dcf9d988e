package echoapi

import (
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/killingspree001/lautechmarket/core"
	"github.com/killingspree001/lautechmarket/core/upload"
	cloudinarysvc "github.com/killingspree001/lautechmarket/services/cloudinary"
)

// sniffLen is the number of leading bytes used to detect the content type.
const sniffLen = 512

type (
	uploadApi struct {
		client      *upload.Client
		maxFileSize int64
		validate    *validator.Validate
	}

	UploadForm struct {
		Folder string `json:"folder" form:"folder" validate:"omitempty,folder"`
	}

	UploadResponse struct {
		upload.Result
		OptimizedURL string `json:"optimized_url"`
	}

	AccountsResponse struct {
		Count    int      `json:"count"`
		Accounts []string `json:"accounts"`
	}
)

func (data *UploadForm) Validate(validate *validator.Validate) error {
	data.Folder = core.CleanString(data.Folder)
	return validate.Struct(data)
}

func registerUploadAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	client *upload.Client,
	maxFileSize int64,
	validate *validator.Validate,
) {
	api := uploadApi{
		client:      client,
		maxFileSize: maxFileSize,
		validate:    validate,
	}

	// authed endpoints
	ug := g.Group("/uploads", jwt)
	ug.POST("", api.create, vendorMiddleware())
	ug.GET("/accounts", api.accounts, adminMiddleware())
}

// Handlers

func (api *uploadApi) create(ctx echo.Context) error {
	if api.maxFileSize > 0 {
		// leave room for the multipart envelope
		ctx.Request().Body = http.MaxBytesReader(ctx.Response(), ctx.Request().Body, api.maxFileSize+sniffLen*2)
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errFileTooLarge
		}
		return core.NewValidationError(err, core.FieldError{Field: "file", Error: "this field is required"})
	}
	if api.maxFileSize > 0 && fh.Size > api.maxFileSize {
		return errFileTooLarge
	}

	form := UploadForm{Folder: ctx.FormValue("folder")}
	if err = form.Validate(api.validate); err != nil {
		return err
	}

	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer func() { _ = f.Close() }()
	content, err := ioutil.ReadAll(f)
	if err != nil {
		return errors.Wrap(err, "reading uploaded file")
	}

	contentType := http.DetectContentType(content)
	if !strings.HasPrefix(contentType, "image/") {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: msgFieldMustBeAnImage})
	}

	res, err := api.client.Upload(ctx.Request().Context(), upload.File{
		Name:        fh.Filename,
		ContentType: contentType,
		Content:     content,
	}, form.Folder)
	if err != nil {
		return errors.Wrap(err, "uploading file")
	}
	return ctx.JSON(http.StatusCreated, UploadResponse{
		Result:       res,
		OptimizedURL: cloudinarysvc.OptimizedURL(res.URL, cloudinarysvc.DefaultWidth, cloudinarysvc.DefaultQuality),
	})
}

func (api *uploadApi) accounts(ctx echo.Context) error {
	accounts := api.client.Accounts()
	names := make([]string, 0, len(accounts))
	for _, a := range accounts {
		names = append(names, a.CloudName)
	}
	return ctx.JSON(http.StatusOK, AccountsResponse{Count: api.client.AccountCount(), Accounts: names})
}
