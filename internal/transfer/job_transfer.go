package transfer

import "github.com/golang-jwt/jwt/v5"

type DispatchResult struct {
	Message   string   `json:"message"`
	Processed int      `json:"processed"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors"`
}

type RefreshError struct {
	User  string `json:"user"`
	Error string `json:"error"`
}

type RefreshResult struct {
	Message   string         `json:"message,omitempty"`
	Refreshed int            `json:"refreshed"`
	Failed    int            `json:"failed"`
	Errors    []RefreshError `json:"errors"`
}

type SnapshotResult struct {
	Message          string   `json:"message"`
	SnapshotsCreated int      `json:"snapshots_created"`
	AlertsCreated    int      `json:"alerts_created"`
	Errors           []string `json:"errors"`
}

// ServiceClaims identifies callers allowed to trigger the job endpoints.
type ServiceClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

const ServiceRole = "service_role"
