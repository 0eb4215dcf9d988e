package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/killingspree001/lautechmarket/core"
	"github.com/killingspree001/lautechmarket/core/cart"
	"github.com/killingspree001/lautechmarket/core/catalog"
	"github.com/killingspree001/lautechmarket/core/upload"
)

var (
	errUnauthorized        = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errHttpForbidden       = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errNoSession           = echo.NewHTTPError(http.StatusBadRequest, "cart session missing")
	errFileTooLarge        = echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
	errStreamNotSupported  = echo.NewHTTPError(http.StatusInternalServerError, "streaming not supported")
	msgUploadUnavailable   = "image uploads are not configured"
	msgAllUploadsFailed    = "image upload failed on every account"
	msgCartNotSaved        = "cart changes could not be saved"
	msgFieldMustBeAnImage  = "the file must be an image"
	msgFieldInvalidNumber  = "must be a number"
	msgFieldInvalidBoolean = "must be true or false"
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *upload.AllAccountsFailedError:
			code = http.StatusBadGateway
			message = msgAllUploadsFailed
			logger.Error(msgAllUploadsFailed, err, contextPerson(ctx))
		default:
			switch origErr {
			case catalog.ErrNotFound:
				code = http.StatusNotFound
				message = origErr.Error()
			case cart.ErrInvalidQuantity:
				code = http.StatusBadRequest
				message = echo.Map{"quantity": origErr.Error()}
			case upload.ErrNoAccountsConfigured:
				code = http.StatusServiceUnavailable
				message = msgUploadUnavailable
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg
				logger.Error(msg, errors.Wrap(err, msg), contextPerson(ctx))

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
