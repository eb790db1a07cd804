package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"interview-screener/internal/domain/dto"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message, Details: details})
}

// queryFlag reads a boolean query parameter. A bare flag ("?debug") counts
// as true; unparsable values as false.
func queryFlag(r *http.Request, name string) bool {
	values, ok := r.URL.Query()[name]
	if !ok {
		return false
	}
	if len(values) == 0 || values[0] == "" {
		return true
	}
	flag, err := strconv.ParseBool(values[0])
	return err == nil && flag
}

func pageOptions(r *http.Request) dto.PageOptions {
	return dto.PageOptions{
		ShowSpeakerMute:     queryFlag(r, "showSpeakerMute"),
		ModelOverride:       r.URL.Query().Get("model"),
		ShowDebugMessages:   queryFlag(r, "showDebugMessages"),
		ShowUserTranscripts: queryFlag(r, "showUserTranscripts"),
	}
}
