package cloudinarysvc

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
)

const (
	DefaultWidth   = 400
	DefaultQuality = "auto"
)

// deliveryPath matches https://res.cloudinary.com/<cloud>/image/upload/[v<version>/]<public id>.
var deliveryPath = regexp.MustCompile(`^/([^/]+)/image/upload/(?:v(\d+)/)?(.+)$`)

// OptimizedURL rebuilds a stored Cloudinary delivery url with resize, quality and format transformations.
// other urls are returned unchanged.
func OptimizedURL(rawURL string, width int, quality string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host != "res.cloudinary.com" {
		return rawURL
	}
	m := deliveryPath.FindStringSubmatch(u.Path)
	if m == nil {
		return rawURL
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if quality == "" {
		quality = DefaultQuality
	}

	cld, err := cloudinary.NewFromParams(m[1], "", "")
	if err != nil {
		return rawURL
	}
	cld.Config.URL.Secure = true
	cld.Config.URL.Analytics = false
	cld.Config.URL.ForceVersion = false

	img, err := cld.Image(m[3])
	if err != nil {
		return rawURL
	}
	if m[2] != "" {
		img.Version, _ = strconv.Atoi(m[2])
	}
	img.Transformation = strings.Join([]string{"w_" + strconv.Itoa(width), "q_" + quality, "f_auto"}, ",")

	out, err := img.String()
	if err != nil {
		return rawURL
	}
	return out
}
