// ABOUTME: Absolute-path discovery in free text and parent-directory derivation
// ABOUTME: Handles both Windows drive paths and Unix paths regardless of host OS

package behavior

import (
	"path"
	"regexp"
	"strings"
)

var (
	windowsPath = regexp.MustCompile(`[A-Z]:\\[^<>:"|?*\n]+`)
	unixPath    = regexp.MustCompile(`(?:^|[\s"'(=])(/[\w.@+-]+(?:/[\w.@+-]+)+)`)
)

// Dirs returns the parent directory of every absolute path in text, in
// order of appearance. Windows paths come first.
func Dirs(text string) []string {
	var dirs []string
	for _, p := range windowsPath.FindAllString(text, -1) {
		if d := windowsParent(strings.TrimSpace(p)); d != "" {
			dirs = append(dirs, d)
		}
	}
	for _, m := range unixPath.FindAllStringSubmatch(text, -1) {
		if d := path.Dir(m[1]); d != "/" {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// windowsParent mirrors a Windows path's parent, independent of the host
// separator: C:\a\b.txt -> C:\a, C:\b.txt -> C:\.
func windowsParent(p string) string {
	p = strings.TrimRight(p, `\`)
	i := strings.LastIndex(p, `\`)
	if i < 0 {
		return ""
	}
	if i <= 2 {
		return p[:3]
	}
	return p[:i]
}
