package api

import (
	"encoding/json"
	"net/http"
)

// dataEnvelope is the body of a successful request.
type dataEnvelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

func respondWithData(w http.ResponseWriter, status int, data interface{}) {
	respondWithJSON(w, status, dataEnvelope{Success: true, Data: data})
}

// respondWithJSON is a helper function to write JSON responses.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
