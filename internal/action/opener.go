// ABOUTME: Platform opener: hands URLs and files to the OS default handler or file manager
// ABOUTME: Command selection by runtime.GOOS (open, xdg-open, rundll32/explorer)

package action

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Opener performs the OS-level side effects of actions.
type Opener interface {
	// Open hands target (URL or file path) to the default handler.
	Open(ctx context.Context, target string) error
	// Reveal shows path in the platform file manager.
	Reveal(ctx context.Context, path string) error
}

// SystemOpener runs the platform's opener commands.
type SystemOpener struct {
	goos string
}

// NewSystemOpener returns an opener for the running OS.
func NewSystemOpener() *SystemOpener {
	return &SystemOpener{goos: runtime.GOOS}
}

// Open launches the default handler for target.
func (o *SystemOpener) Open(ctx context.Context, target string) error {
	name, args := openCmd(o.goos, target)
	if name == "" {
		return fmt.Errorf("%w: opening on %s", ErrUnsupported, o.goos)
	}
	return run(ctx, name, args...)
}

// Reveal opens the file manager at path.
func (o *SystemOpener) Reveal(ctx context.Context, path string) error {
	name, args := revealCmd(o.goos, path)
	if name == "" {
		return fmt.Errorf("%w: revealing on %s", ErrUnsupported, o.goos)
	}
	return run(ctx, name, args...)
}

// openCmd returns the open command and arguments for goos.
func openCmd(goos, target string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{target}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{target}
	default:
		return "", nil
	}
}

// revealCmd returns the file-manager command and arguments for goos.
func revealCmd(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{"-R", path}
	case "windows":
		return "explorer", []string{"/select," + path}
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{filepath.Dir(path)}
	default:
		return "", nil
	}
}

func run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("running %s: %w (%s)", name, err, out)
	}
	return nil
}
