package handler

import "github.com/goldshop/backend/internal/interfaces/http/dto"

// APIResponse represents a generic API response with a typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// SchedulerStatusData reports the default scan scheduler's last run
type SchedulerStatusData struct {
	Enabled   bool   `json:"enabled"`
	LastRunAt string `json:"last_run_at,omitempty"`
	LastError string `json:"last_error,omitempty"`
}
