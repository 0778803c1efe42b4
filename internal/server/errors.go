package server

import (
	"net/http"
	"strconv"
)

// Fixed error bodies. Clients and tests compare them byte for byte.
const (
	ForbiddenBody = "<html><body>403 Forbidden</body></html>"
	NotFoundBody  = "<html><body>404 Not found</body></html>"
)

var defaultErrorBodies = map[int]string{
	http.StatusForbidden: ForbiddenBody,
	http.StatusNotFound:  NotFoundBody,
}

// WriteErrorResponse writes status with its fixed HTML body and returns the
// number of body bytes written. Headers already set on w (cache policy,
// isolation headers) are kept, except those describing the file that is not
// being sent.
func WriteErrorResponse(w http.ResponseWriter, status int) int {
	body, ok := defaultErrorBodies[status]
	if !ok {
		body = "<html><body>" + strconv.Itoa(status) + " " + http.StatusText(status) + "</body></html>"
	}

	h := w.Header()
	h.Del("Content-Encoding")
	h.Del("Accept-Ranges")
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)

	n, _ := w.Write([]byte(body))
	return n
}
