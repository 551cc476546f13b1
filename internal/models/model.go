package models

import "time"

type ModelInfo struct {
	Name     string    `json:"name"`
	Kind     string    `json:"kind"`
	Features []string  `json:"features"`
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loaded_at"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
