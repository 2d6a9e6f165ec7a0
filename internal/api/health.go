package api

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version,omitempty"`
	Uptime    string    `json:"uptime,omitempty"`
	Roots     int       `json:"roots"`
	Types     []string  `json:"types"`

	// DictionaryServed reports whether the dictionary document endpoint
	// can currently open its file
	DictionaryServed bool `json:"dictionary_served"`
}

// Version is reported by the health endpoint.
var Version = "0.1.0"

var startTime = time.Now()

// HandleHealth returns the health status of the application.
// It does not fetch the dictionary.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:           "ok",
		Timestamp:        time.Now(),
		Version:          Version,
		Uptime:           time.Since(startTime).String(),
		Roots:            len(s.host.Roots()),
		Types:            s.host.TypeNames(),
		DictionaryServed: s.docs != nil && s.docs.Exists(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
