// pkg/status/status.go - host and agent facts reported by GET /status.

package status

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/windowsadmins/appstore/pkg/logging"
	"github.com/windowsadmins/appstore/pkg/version"
)

// Snapshot describes the agent and the machine it runs on.
type Snapshot struct {
	App             string `json:"app"`
	Version         string `json:"version"`
	Hostname        string `json:"hostname"`
	OS              string `json:"os"`
	Platform        string `json:"platform,omitempty"`
	PlatformVersion string `json:"platformVersion,omitempty"`
	KernelArch      string `json:"kernelArch,omitempty"`
	UptimeSeconds   uint64 `json:"uptimeSeconds,omitempty"`
	Privileged      bool   `json:"privileged"`
	ActiveInstalls  int    `json:"activeInstalls"`
	ResidentBytes   uint64 `json:"residentBytes,omitempty"`
	Timestamp       string `json:"timestamp"`
}

// Collect gathers a Snapshot. Host lookups that fail leave their fields
// empty rather than failing the request.
func Collect(ctx context.Context, privileged bool, activeInstalls int) Snapshot {
	info := version.Version()
	snap := Snapshot{
		App:            info.App,
		Version:        info.Version,
		OS:             runtime.GOOS,
		KernelArch:     runtime.GOARCH,
		Privileged:     privileged,
		ActiveInstalls: activeInstalls,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}

	if p, err := process.NewProcessWithContext(ctx, int32(os.Getpid())); err == nil {
		if mem, err := p.MemoryInfoWithContext(ctx); err == nil {
			snap.ResidentBytes = mem.RSS
		}
	}

	hi, err := host.InfoWithContext(ctx)
	if err != nil {
		logging.Debug("Host info lookup failed", "error", err)
		return snap
	}
	snap.Hostname = hi.Hostname
	snap.Platform = hi.Platform
	snap.PlatformVersion = hi.PlatformVersion
	snap.UptimeSeconds = hi.Uptime
	if hi.KernelArch != "" {
		snap.KernelArch = hi.KernelArch
	}
	return snap
}
