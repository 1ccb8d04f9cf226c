// pkg/logging/helpers.go - helpers for the install pipeline's lifecycle records.

package logging

import "time"

// LogInstallStart logs the start of an install request.
func LogInstallStart(requestID, displayName, installType, url string) {
	Info("Install request started",
		"request_id", requestID,
		"name", displayName,
		"install_type", installType,
		"url", url,
	)
}

// LogInstallComplete logs a successful pipeline run.
func LogInstallComplete(requestID, displayName string, duration time.Duration) {
	Info("Install request completed",
		"request_id", requestID,
		"name", displayName,
		"duration", duration.String(),
	)
}

// LogInstallFailed logs a pipeline run that ended in failure or rejection.
func LogInstallFailed(requestID, displayName, outcome, message string, duration time.Duration) {
	Error("Install request failed",
		"request_id", requestID,
		"name", displayName,
		"outcome", outcome,
		"message", message,
		"duration", duration.String(),
	)
}
