package handoff

import (
	"net/url"
	"strings"
)

// DefaultMessagingHost serves click-to-chat links.
const DefaultMessagingHost = "wa.me"

// DeepLink builds https://<host>/<phone>?text=<message>. Spaces are encoded
// as %20 because click-to-chat clients do not decode '+'.
func DeepLink(host, phone, message string) string {
	if host == "" {
		host = DefaultMessagingHost
	}
	u := url.URL{
		Scheme:   "https",
		Host:     host,
		Path:     "/" + phone,
		RawQuery: "text=" + strings.ReplaceAll(url.QueryEscape(message), "+", "%20"),
	}
	return u.String()
}
