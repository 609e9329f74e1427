package handlers

import (
	"net/http"
)

type ConnectionCounter interface {
	ConnectionCount() (int, error)
}

func Health(counter ConnectionCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := counter.ConnectionCount()
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting down"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "connections": n})
	}
}
