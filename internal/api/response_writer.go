package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/hlog"
)

func respondWithJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	jsonBody, err := json.Marshal(data)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Failed to encode response")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(jsonBody)
}

// respondWithError logs err and writes its message as a plain-text body.
func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	hlog.FromRequest(r).Error().Err(err).Int("status", status).Msg("Request failed")
	http.Error(w, err.Error(), status)
}
