package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// headerID returns the client supplied id in header, or a fresh uuid when the
// value is missing, longer than max or contains anything but printable ASCII.
func headerID(r *http.Request, header string, max int) string {
	id := strings.TrimSpace(r.Header.Get(header))
	if id == "" || len(id) > max {
		return uuid.NewString()
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return uuid.NewString()
		}
	}
	return id
}
