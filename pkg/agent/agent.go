// pkg/agent/agent.go - the install pipeline: privilege check, download, dispatch, report.

package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/windowsadmins/appstore/pkg/catalog"
	"github.com/windowsadmins/appstore/pkg/download"
	"github.com/windowsadmins/appstore/pkg/installer"
	"github.com/windowsadmins/appstore/pkg/logging"
	"github.com/windowsadmins/appstore/pkg/metrics"
	"github.com/windowsadmins/appstore/pkg/privilege"
)

// Fetcher downloads a URL to a local path.
type Fetcher interface {
	DownloadFile(ctx context.Context, rawURL, dest string) error
}

// Options configures an Agent. Zero-valued collaborators get real implementations.
type Options struct {
	SessionDir      string
	Privilege       privilege.Checker
	Fetcher         Fetcher
	Runner          installer.Runner
	DownloadTimeout time.Duration
	// RevealManual opens the file manager on manual downloads.
	RevealManual bool
	Reveal       func(path string)
}

// Agent runs install pipelines. It keeps no per-request state beyond the
// artifacts left in its session directory.
type Agent struct {
	sessionDir      string
	privilege       privilege.Checker
	fetcher         Fetcher
	runner          installer.Runner
	downloadTimeout time.Duration
	revealManual    bool
	reveal          func(string)

	locks  *keyLock
	active atomic.Int32
}

// NewSessionDir creates a fresh session directory under tempPath.
func NewSessionDir(tempPath string) (string, error) {
	dir := filepath.Join(tempPath, "session-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create session directory %s: %w", dir, err)
	}
	return dir, nil
}

// New builds an Agent writing artifacts under opts.SessionDir.
func New(opts Options) (*Agent, error) {
	if opts.SessionDir == "" {
		return nil, errors.New("session directory is required")
	}
	if err := os.MkdirAll(opts.SessionDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	a := &Agent{
		sessionDir:      opts.SessionDir,
		privilege:       opts.Privilege,
		fetcher:         opts.Fetcher,
		runner:          opts.Runner,
		downloadTimeout: opts.DownloadTimeout,
		revealManual:    opts.RevealManual,
		reveal:          opts.Reveal,
		locks:           newKeyLock(),
	}
	if a.privilege == nil {
		a.privilege = privilege.System{}
	}
	if a.fetcher == nil {
		a.fetcher = download.New(nil)
	}
	if a.runner == nil {
		a.runner = installer.NewExecRunner(15 * time.Minute)
	}
	return a, nil
}

// SessionDir is where downloads land.
func (a *Agent) SessionDir() string { return a.sessionDir }

// Privileged reports the current privilege check result.
func (a *Agent) Privileged() bool { return a.privilege.HasInstallPrivilege() }

// ActiveInstalls is the number of pipelines currently running.
func (a *Agent) ActiveInstalls() int { return int(a.active.Load()) }

// Install runs the pipeline for req and reports its terminal state. Nothing
// is retried. Cancelling ctx aborts a download but never a running installer.
func (a *Agent) Install(ctx context.Context, req InstallRequest) InstallResult {
	a.active.Add(1)
	defer a.active.Add(-1)

	start := time.Now()
	requestID := uuid.NewString()
	installType := strings.ToLower(strings.TrimSpace(req.InstallType))
	if installType == "" {
		installType = string(catalog.InstallSilent)
	}
	logging.LogInstallStart(requestID, req.DisplayName, installType, req.TargetURL)

	res := a.run(ctx, req, installType)
	res.RequestID = requestID
	res.Duration = time.Since(start)

	if res.Outcome == OutcomeSuccess {
		logging.LogInstallComplete(requestID, req.label(), res.Duration)
	} else {
		logging.LogInstallFailed(requestID, req.label(), string(res.Outcome), res.Message, res.Duration)
	}
	metrics.ObserveInstall(metricType(installType), string(res.Outcome), res.Duration)
	return res
}

func (a *Agent) run(ctx context.Context, req InstallRequest, installType string) InstallResult {
	if err := req.Validate(); err != nil {
		return failure(err.Error())
	}

	if !a.privilege.HasInstallPrivilege() {
		return InstallResult{
			Outcome: OutcomeRejected,
			Message: ErrPrivilege.Error(),
		}
	}

	fileName, err := download.FileNameFromURL(req.TargetURL)
	if err != nil {
		return failure(err.Error())
	}

	unlock, err := a.locks.Lock(ctx, strings.ToLower(fileName))
	if err != nil {
		return failure(fmt.Sprintf("canceled while waiting for another install of %s: %v", fileName, err))
	}
	defer unlock()

	dest := filepath.Join(a.sessionDir, fileName)
	if err := a.fetch(ctx, req.TargetURL, dest); err != nil {
		return failure(fmt.Sprintf("download of %s failed: %v", req.TargetURL, err))
	}

	if req.SHA256 != "" {
		if err := download.Verify(dest, req.SHA256); err != nil {
			removeArtifact(dest)
			return failure(fmt.Sprintf("verification of %s failed: %v", fileName, err))
		}
	}

	switch catalog.InstallType(installType) {
	case catalog.InstallSilent:
		return a.runSilent(ctx, req, dest)
	case catalog.InstallManual:
		return a.handOff(req, dest)
	default:
		return failure(fmt.Sprintf("unknown install type %q", req.InstallType))
	}
}

func (a *Agent) fetch(ctx context.Context, rawURL, dest string) error {
	if a.downloadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.downloadTimeout)
		defer cancel()
	}
	return a.fetcher.DownloadFile(ctx, rawURL, dest)
}

func (a *Agent) runSilent(ctx context.Context, req InstallRequest, artifact string) InstallResult {
	// a started installer runs to completion even if the caller goes away
	out, err := a.runner.Run(context.WithoutCancel(ctx), artifact, installer.SplitArgs(req.SilentArgs))
	if err != nil {
		var exitErr *installer.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.Code
			return InstallResult{
				Outcome:  OutcomeFailure,
				Message:  fmt.Sprintf("installer for %s exited with code %d: %s", req.label(), code, exitErr.Output()),
				ExitCode: &code,
				Output:   exitErr.Output(),
			}
		}
		return failure(fmt.Sprintf("installer for %s failed: %v", req.label(), err))
	}

	removeArtifact(artifact)
	return InstallResult{
		Outcome: OutcomeSuccess,
		Message: fmt.Sprintf("%s installed successfully", req.label()),
		Output:  strings.TrimSpace(out.Stdout),
	}
}

func (a *Agent) handOff(req InstallRequest, artifact string) InstallResult {
	if a.revealManual && a.reveal != nil {
		a.reveal(artifact)
	}
	return InstallResult{
		Outcome:           OutcomeSuccess,
		Message:           fmt.Sprintf("%s downloaded; run the installer to finish", req.label()),
		LocalArtifactPath: artifact,
	}
}

func removeArtifact(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn("Failed to remove installer artifact", "path", path, "error", err)
	}
}

func failure(msg string) InstallResult {
	return InstallResult{Outcome: OutcomeFailure, Message: msg}
}

func metricType(installType string) string {
	switch catalog.InstallType(installType) {
	case catalog.InstallSilent, catalog.InstallManual:
		return installType
	default:
		return "unknown"
	}
}
