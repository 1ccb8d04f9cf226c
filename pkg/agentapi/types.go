package agentapi

import (
	"strings"

	"github.com/windowsadmins/appstore/pkg/agent"
)

const (
	statusSuccess = "success"
	statusFailure = "failure"
	statusError   = "error"
)

// installBody accepts both the current field names and the short
// {url, args, name} form older desktop clients send.
type installBody struct {
	TargetURL   string `json:"targetUrl"`
	URL         string `json:"url"`
	InstallType string `json:"installType"`
	SilentArgs  string `json:"silentArgs"`
	Args        string `json:"args"`
	DisplayName string `json:"displayName"`
	Name        string `json:"name"`
	SHA256      string `json:"sha256"`
}

func (b installBody) toRequest() agent.InstallRequest {
	return agent.InstallRequest{
		TargetURL:   strings.TrimSpace(firstNonEmpty(b.TargetURL, b.URL)),
		InstallType: b.InstallType,
		SilentArgs:  firstNonEmpty(b.SilentArgs, b.Args),
		DisplayName: firstNonEmpty(b.DisplayName, b.Name),
		SHA256:      strings.TrimSpace(b.SHA256),
	}
}

type installResponse struct {
	Status            string `json:"status"`
	Outcome           string `json:"outcome,omitempty"`
	Message           string `json:"message"`
	LocalArtifactPath string `json:"localArtifactPath,omitempty"`
	ExitCode          *int   `json:"exitCode,omitempty"`
	Output            string `json:"output,omitempty"`
	RequestID         string `json:"requestId,omitempty"`
	DurationMs        int64  `json:"durationMs,omitempty"`
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
