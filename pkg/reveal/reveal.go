// pkg/reveal/reveal.go - shows a downloaded file in the desktop file manager.

package reveal

import (
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/windowsadmins/appstore/pkg/logging"
)

// File opens the platform file manager at path. Failures are logged and
// otherwise ignored; nobody waits on the file manager.
func File(path string) {
	cmd := command(path)
	if cmd == nil {
		return
	}
	if err := cmd.Start(); err != nil {
		logging.Warn("Could not reveal downloaded file", "path", path, "error", err)
		return
	}
	go func() { _ = cmd.Wait() }()
}

func command(path string) *exec.Cmd {
	switch runtime.GOOS {
	case "windows":
		return exec.Command("explorer.exe", "/select,"+path)
	case "darwin":
		return exec.Command("open", "-R", path)
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", filepath.Dir(path))
	default:
		return nil
	}
}
