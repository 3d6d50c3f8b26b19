package lock

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Patterns for file-touching shell idioms. A path token runs until
// whitespace, a redirection, or a shell control character; `$` stays legal
// inside tokens so environment references survive to expansion.
var (
	fileCmdPattern  = regexp.MustCompile(`(?:^|[|;&]\s*)(?:cat|head|tail|less|more|stat|wc|touch|rm)\s+(?:-[^\s]+\s+)*([^\s|;&<>()]+)`)
	pairCmdPattern  = regexp.MustCompile(`(?:^|[|;&]\s*)(?:cp|mv|ln)\s+(?:-[^\s]+\s+)*([^\s|;&<>()]+)\s+([^\s|;&<>()]+)`)
	redirectPattern = regexp.MustCompile(`(?:>>?|<)\s*([^\s|;&<>()]+)`)
)

// ExtractPaths scans a shell-like command string and returns the canonical
// absolute paths it appears to read or write, deduplicated, in no defined
// order. It recognizes a narrow set of idioms: single-path file commands
// (cat, head, tail, less, more, stat, wc, touch, rm), output and input
// redirections, and two-argument copy/move/link commands. Tokens are
// expanded (`~`, `$VAR`, `${VAR}`) and resolved through symlinks; a token
// that does not resolve falls back to its cleaned absolute form so locking
// stays conservative.
//
// This is pattern matching over text, not a shell parser. It both
// over-approximates (paths a command never touches) and under-approximates
// (dynamically constructed paths, unrecognized commands). Callers relying
// on it for mutual exclusion accept that pathological commands may slip
// through.
func ExtractPaths(command string) []string {
	var tokens []string
	for _, m := range fileCmdPattern.FindAllStringSubmatch(command, -1) {
		tokens = append(tokens, m[1])
	}
	for _, m := range pairCmdPattern.FindAllStringSubmatch(command, -1) {
		tokens = append(tokens, m[1], m[2])
	}
	for _, m := range redirectPattern.FindAllStringSubmatch(command, -1) {
		tokens = append(tokens, m[1])
	}

	seen := make(map[string]struct{}, len(tokens))
	paths := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		// Flags are never paths
		if strings.HasPrefix(tok, "-") {
			continue
		}
		tok = expandToken(tok)
		if tok == "" {
			continue
		}
		p := canonicalPath(tok)
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		paths = append(paths, p)
	}
	return paths
}

// expandToken expands home-directory shorthand and environment variables.
// Expansion never fails; unknown variables expand to the empty string and
// the caller drops empty results.
func expandToken(tok string) string {
	if tok == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return tok
	}
	if strings.HasPrefix(tok, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			tok = filepath.Join(home, tok[2:])
		}
	}
	return os.ExpandEnv(tok)
}

// canonicalPath resolves tok to an absolute path with symlinks followed.
// A path that does not exist keeps its cleaned absolute form; a token that
// cannot be made absolute is returned unchanged.
func canonicalPath(tok string) string {
	abs, err := filepath.Abs(tok)
	if err != nil {
		return tok
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
