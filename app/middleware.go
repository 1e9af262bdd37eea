package app

import (
	"net/http"

	"github.com/renstrom/shortuuid"
	log "github.com/sirupsen/logrus"
)

// requestID tags every request with a short unique ID for log correlation.
// The ID is echoed back in the X-Request-ID response header.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := shortuuid.New()
		w.Header().Set("X-Request-ID", id)
		log.WithFields(log.Fields{
			"id":     id,
			"method": r.Method,
			"path":   r.URL.Path,
		}).Debug("request")
		next.ServeHTTP(w, r)
	})
}
