package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/GreatRoyce/ElitePlan-sub000/internal/apperr"
	"github.com/GreatRoyce/ElitePlan-sub000/internal/logger"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Errorf("writeJSON encode: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}

// writeAppErr maps a service error to a response. Client faults carry
// their own message; store failures get the generic fallback so
// internals never leak.
func writeAppErr(w http.ResponseWriter, err error, fallback string) {
	status := apperr.Status(err)
	if apperr.IsClientFault(err) {
		writeError(w, status, err.Error())
		return
	}
	logger.Errorf("%s: %v", fallback, err)
	writeError(w, status, fallback)
}

func queryInt(r *http.Request, key string, defaultVal int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}
