package security

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"golang.org/x/text/unicode/norm"
)

// ValidatePath checks an untrusted, caller-supplied install path against
// baseDir and returns the absolute, contained path it resolves to. It
// rejects URL-encoding tricks, Unicode-normalization tricks, Windows-style
// absolute/UNC paths, backslashes, doubled separators, and any resolution
// (including through symlinks) that would land outside baseDir.
func ValidatePath(userPath, baseDir string) (string, error) {
	if strings.Contains(userPath, "%") {
		if decoded, err := url.QueryUnescape(userPath); err == nil && decoded != userPath {
			return "", fmt.Errorf("%w: url-encoded paths not allowed", ErrSecurity)
		}
	}

	normalized := norm.NFKC.String(userPath)
	if !strings.Contains(userPath, "..") && strings.Contains(normalized, "..") {
		return "", fmt.Errorf("%w: unicode normalization attack detected", ErrSecurity)
	}
	if strings.Contains(normalized, "..") && !isASCII(userPath) {
		return "", fmt.Errorf("%w: non-ascii characters in path with traversal pattern", ErrSecurity)
	}

	path := normalized
	if strings.Contains(path, "...") {
		return "", fmt.Errorf("%w: suspicious path pattern detected", ErrSecurity)
	}
	if strings.Contains(path, "//") {
		return "", fmt.Errorf("%w: double slashes in path not allowed", ErrSecurity)
	}
	if strings.ContainsRune(path, 0) {
		return "", fmt.Errorf("%w: path contains null bytes", ErrSecurity)
	}
	if len(path) > 1 && path[1] == ':' {
		return "", fmt.Errorf("%w: windows-style absolute paths not allowed", ErrSecurity)
	}
	if strings.HasPrefix(path, `\\`) || strings.HasPrefix(path, "//") {
		return "", fmt.Errorf("%w: unc paths not allowed", ErrSecurity)
	}
	if strings.Contains(path, `\`) {
		return "", fmt.Errorf("%w: backslashes not allowed", ErrSecurity)
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("%w: cannot resolve base directory: %v", ErrSecurity, err)
	}

	if filepath.IsAbs(path) {
		rel, err := filepath.Rel(absBase, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
			return "", fmt.Errorf("%w: path traversal detected: %s resolves outside base directory", ErrSecurity, userPath)
		}
		path = rel
	}

	// Reject lexically before handing off to SecureJoin: SecureJoin clamps
	// ".." components to stay inside absBase rather than erroring, but a
	// path that needs clamping is exactly the traversal attempt we want to
	// surface as a rejection rather than silently contain.
	joined := filepath.Join(absBase, path)
	if rel, err := filepath.Rel(absBase, joined); err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%w: path traversal detected: %s resolves outside base directory", ErrSecurity, userPath)
	}

	resolved, err := securejoin.SecureJoin(absBase, path)
	if err != nil {
		return "", fmt.Errorf("%w: path traversal detected: %v", ErrSecurity, err)
	}
	return resolved, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return true
}
