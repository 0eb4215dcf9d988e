package echoapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	sessionContextKey = "cartSession"
	sessionMaxAge     = 365 * 24 * time.Hour
)

// adminMiddleware only lets administrators through.
func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// vendorMiddleware lets vendors and administrators through.
func vendorMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin || claims.VendorID != "" {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// sessionMiddleware binds the request to the cart session held by the cookieName cookie,
// issuing a new session when the cookie is missing or invalid.
func sessionMiddleware(cookieName string) echo.MiddlewareFunc {
	if cookieName == "" {
		cookieName = "cart_session"
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			var sid string
			if cookie, err := ctx.Cookie(cookieName); err == nil {
				if id, err := uuid.Parse(cookie.Value); err == nil {
					sid = id.String()
				}
			}
			if sid == "" {
				sid = uuid.New().String()
				ctx.SetCookie(&http.Cookie{
					Name:     cookieName,
					Value:    sid,
					Path:     "/",
					MaxAge:   int(sessionMaxAge.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx.Set(sessionContextKey, sid)
			return next(ctx)
		}
	}
}

func getContextSession(ctx echo.Context) (string, error) {
	if sid, ok := ctx.Get(sessionContextKey).(string); ok && sid != "" {
		return sid, nil
	}
	return "", errNoSession
}
