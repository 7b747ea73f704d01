// ABOUTME: Content signatures: a coarse, deterministic bucket name for a piece of clipboard text
// ABOUTME: The behavior store keys workflow pairs on these signatures

package signature

import (
	"regexp"
	"strings"
)

// Well-known signatures. Anything else is a lower-cased word-prefix signature.
const (
	Empty          = "empty"
	PythonCode     = "python_code"
	PythonFilename = "python_filename"
	PythonCommand  = "python_command"
	JSONFile       = "json_file"
	PipInstall     = "pip_install"
	ErrorMessage   = "error_message"
	FilePath       = "file_path"
	URL            = "url"
)

// prefixWords bounds the fallback signature.
const prefixWords = 3

var (
	pyFile      = regexp.MustCompile(`\.py\b`)
	pyCommand   = regexp.MustCompile(`(?i)python\s+\w+\.py`)
	jsonFile    = regexp.MustCompile(`\.json\b`)
	errorWord   = regexp.MustCompile(`(?i)error|exception|traceback`)
	windowsRoot = regexp.MustCompile(`[A-Z]:\\`)
	httpScheme  = regexp.MustCompile(`https?://`)
)

// Of returns the signature of text. Rules are tried in order and the first
// match wins; blank text is Empty.
func Of(text string) string {
	if strings.TrimSpace(text) == "" {
		return Empty
	}
	lower := strings.ToLower(text)

	switch {
	case pyFile.MatchString(text):
		if strings.Contains(lower, "import") || strings.Contains(lower, "def ") {
			return PythonCode
		}
		return PythonFilename
	case pyCommand.MatchString(text):
		return PythonCommand
	case jsonFile.MatchString(text):
		return JSONFile
	case strings.Contains(lower, "pip install"):
		return PipInstall
	case errorWord.MatchString(text):
		return ErrorMessage
	case windowsRoot.MatchString(text):
		return FilePath
	case httpScheme.MatchString(text):
		return URL
	}

	words := strings.Fields(lower)
	if len(words) > prefixWords {
		words = words[:prefixWords]
	}
	return strings.Join(words, "_")
}
