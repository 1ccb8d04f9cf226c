// pkg/agent/types.go - request and result shapes for the install pipeline.

package agent

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Outcome is the terminal state of one pipeline run.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailure  Outcome = "failure"
	OutcomeRejected Outcome = "rejected"
)

var (
	// ErrInvalidRequest marks a request whose shape is unusable.
	ErrInvalidRequest = errors.New("invalid install request")
	// ErrPrivilege is reported when the agent cannot install system-wide.
	ErrPrivilege = errors.New("install agent is not running with administrator/root privileges")
)

// InstallRequest asks the agent to fetch and install one artifact.
type InstallRequest struct {
	TargetURL   string
	InstallType string
	SilentArgs  string
	DisplayName string
	// SHA256 is optional; when set the download must match it.
	SHA256 string
}

// Validate checks that the request names a fetchable http(s) URL.
func (r InstallRequest) Validate() error {
	target := strings.TrimSpace(r.TargetURL)
	if target == "" {
		return fmt.Errorf("%w: targetUrl is required", ErrInvalidRequest)
	}
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("%w: targetUrl %q: %v", ErrInvalidRequest, target, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: targetUrl must be an absolute http or https URL", ErrInvalidRequest)
	}
	return nil
}

func (r InstallRequest) label() string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return r.TargetURL
}

// InstallResult is reported back to the caller verbatim.
type InstallResult struct {
	Outcome Outcome
	Message string
	// LocalArtifactPath is set only for manual installs whose download succeeded.
	LocalArtifactPath string
	// ExitCode is set when an installer ran and exited non-zero.
	ExitCode  *int
	Output    string
	RequestID string
	Duration  time.Duration
}
