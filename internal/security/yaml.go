package security

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// MaxYAMLSize is the largest catalog document this module will parse.
	MaxYAMLSize = 1 * 1024 * 1024 // 1 MiB
	// YAMLTimeout bounds how long a single parse may run.
	YAMLTimeout = 5 * time.Second
	// maxAnchors/maxAliases bound anchor/alias usage to block YAML-bomb
	// style expansion attacks while still permitting normal reuse.
	maxAnchors = 3
	maxAliases = 5
	// expansionFactor bounds how much larger the parsed representation
	// may be than the raw source, guarding against billion-laughs style
	// expansion that anchor/alias counting alone would miss.
	expansionFactor = 10
)

// effectiveMaxYAMLSize and effectiveYAMLTimeout are the limits actually
// enforced; they default to MaxYAMLSize/YAMLTimeout but can be tightened or
// loosened at startup via Configure, without disturbing the documented
// constant defaults tests build against.
var (
	effectiveMaxYAMLSize int64         = MaxYAMLSize
	effectiveYAMLTimeout time.Duration = YAMLTimeout
)

// Configure applies operator-supplied limits (typically loaded from
// internal/config) in place of the package defaults.
func Configure(maxYAMLSize int64, yamlTimeout time.Duration, maxURLLength int, allowedDomains []string) {
	if maxYAMLSize > 0 {
		effectiveMaxYAMLSize = maxYAMLSize
	}
	if yamlTimeout > 0 {
		effectiveYAMLTimeout = yamlTimeout
	}
	if maxURLLength > 0 {
		effectiveMaxURLLength = maxURLLength
	}
	if len(allowedDomains) > 0 {
		AllowedDomains = allowedDomains
	}
}

var sensitivePrefixes = []string{"/etc/", "/root/", "/var/", "/sys/", "/proc/"}

var (
	anchorPattern = regexp.MustCompile(`&(\w+)`)
	aliasPattern  = regexp.MustCompile(`\*(\w+)`)
)

// SafeParse reads the YAML file at path and decodes it into v, rejecting
// anything that looks like an attempt at CWE-502 deserialization abuse:
// oversized input, non-UTF-8 or NUL bytes, excessive anchor/alias counts,
// self-referential anchors, symlinks into sensitive system directories, or
// a parse that runs past YAMLTimeout or expands far beyond its source size.
//
// Only plain scalar/sequence/mapping YAML is accepted; any node carrying a
// custom (!!-prefixed non-core, or "!") tag is rejected, since yaml.v3's
// Decode into a plain Go struct or map never constructs arbitrary types
// itself but a custom tag is still a signal of a document trying to steer
// a more permissive consumer elsewhere in a toolchain.
func SafeParse(path string, v any) error {
	info, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("%w: cannot stat %s: %v", ErrSecurity, path, err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("%w: cannot resolve symlink %s: %v", ErrSecurity, path, err)
		}
		for _, prefix := range sensitivePrefixes {
			if strings.HasPrefix(resolved, prefix) {
				return fmt.Errorf("%w: symlink to sensitive file not allowed: %s", ErrSecurity, resolved)
			}
		}
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve %s: %v", ErrSecurity, path, err)
	}
	st, err := os.Stat(resolved)
	if err != nil {
		return fmt.Errorf("%w: cannot stat %s: %v", ErrSecurity, resolved, err)
	}
	if st.Size() > effectiveMaxYAMLSize {
		return fmt.Errorf("%w: file size (%d bytes) exceeds maximum allowed size (%d bytes)", ErrSecurity, st.Size(), effectiveMaxYAMLSize)
	}

	raw, err := os.ReadFile(resolved)
	if err != nil {
		return fmt.Errorf("%w: cannot read %s: %v", ErrSecurity, resolved, err)
	}
	content := string(raw)
	if strings.ContainsRune(content, 0) {
		return fmt.Errorf("%w: file contains null bytes", ErrSecurity)
	}

	anchors := anchorPattern.FindAllStringSubmatch(content, -1)
	aliases := aliasPattern.FindAllStringSubmatch(content, -1)
	if len(anchors) > maxAnchors || len(aliases) > maxAliases {
		return fmt.Errorf("%w: potential YAML bomb detected: excessive anchors/aliases", ErrSecurity)
	}
	if hasNameOverlap(anchors, aliases) {
		return fmt.Errorf("%w: potential recursive YAML structure detected", ErrSecurity)
	}

	return parseWithTimeout(content, v)
}

func hasNameOverlap(anchors, aliases [][]string) bool {
	anchorSet := make(map[string]struct{}, len(anchors))
	for _, m := range anchors {
		anchorSet[m[1]] = struct{}{}
	}
	for _, m := range aliases {
		if _, ok := anchorSet[m[1]]; ok {
			return true
		}
	}
	return false
}

func parseWithTimeout(content string, v any) error {
	ctx, cancel := context.WithTimeout(context.Background(), effectiveYAMLTimeout)
	defer cancel()

	type result struct {
		node yaml.Node
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		var node yaml.Node
		err := yaml.Unmarshal([]byte(content), &node)
		ch <- result{node: node, err: err}
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: yaml parsing exceeded timeout limit", ErrTimeout)
	case res := <-ch:
		if res.err != nil {
			return fmt.Errorf("%w: invalid yaml: %v", ErrSecurity, res.err)
		}
		if res.node.Kind == 0 {
			// Empty document.
			return nil
		}
		if err := rejectUnsafeTags(&res.node); err != nil {
			return err
		}
		if len(content) > 0 {
			if err := checkExpansion(&res.node, len(content)); err != nil {
				return err
			}
		}
		if err := res.node.Decode(v); err != nil {
			return fmt.Errorf("%w: cannot decode yaml into target: %v", ErrSecurity, err)
		}
		return nil
	}
}

var safeTags = map[string]struct{}{
	"!!str": {}, "!!int": {}, "!!float": {}, "!!bool": {},
	"!!null": {}, "!!seq": {}, "!!map": {}, "!!timestamp": {}, "": {},
}

// rejectUnsafeTags walks the node tree depth-first and rejects any node
// whose resolved tag is not one of YAML's core scalar/collection tags,
// refusing to let a document steer a more permissive decoder elsewhere in
// a pipeline into constructing an unexpected type.
func rejectUnsafeTags(n *yaml.Node) error {
	if _, ok := safeTags[n.Tag]; !ok {
		return fmt.Errorf("%w: unsafe yaml tag %q not permitted", ErrSecurity, n.Tag)
	}
	for _, child := range n.Content {
		if err := rejectUnsafeTags(child); err != nil {
			return err
		}
	}
	return nil
}

// checkExpansion guards against anchor/alias expansion (billion-laughs
// style attacks) that the raw anchor/alias counts in SafeParse would not
// catch by themselves, by bounding the re-serialized size of the parsed
// tree against the size of the source document.
func checkExpansion(n *yaml.Node, sourceLen int) error {
	// Decoding into a plain value resolves aliases into copies; marshaling
	// the node tree directly would re-emit them as aliases.
	var expanded any
	if err := n.Decode(&expanded); err != nil {
		return nil // not this function's job to report decode errors
	}
	out, err := yaml.Marshal(expanded)
	if err != nil {
		return nil // not this function's job to report marshal errors
	}
	if len(out) > expansionFactor*sourceLen && len(out) > expansionFactor*1024 {
		return fmt.Errorf("%w: yaml expansion too large (potential billion laughs attack)", ErrSecurity)
	}
	return nil
}
