package security

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

const maxURLLength = 2048

// effectiveMaxURLLength is the limit actually enforced; see Configure.
var effectiveMaxURLLength = maxURLLength

// AllowedDomains lists the hosts download URLs may point to. Kept as a
// package variable rather than a literal slice so a future multi-registry
// deployment can extend it without touching ValidateURL's logic.
var AllowedDomains = []string{"raw.githubusercontent.com"}

var localhostVariants = map[string]struct{}{
	"localhost": {}, "127.0.0.1": {}, "0.0.0.0": {}, "::1": {}, "[::1]": {},
}

// ValidateURL checks an untrusted download URL against the HTTPS-only,
// domain-allow-listed, no-credentials, no-IP-literal policy required to
// prevent SSRF (CWE-918) and cleartext transmission (CWE-319). It returns
// the URL normalized (lowercase host, fragment and default port stripped).
func ValidateURL(raw string) (string, error) {
	if len(raw) > effectiveMaxURLLength {
		return "", fmt.Errorf("%w: url too long: %d characters exceeds maximum of %d", ErrSecurity, len(raw), effectiveMaxURLLength)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: malformed url: %v", ErrSecurity, err)
	}

	if parsed.Scheme != "https" {
		return "", fmt.Errorf("%w: url must use https, not %s", ErrSecurity, parsed.Scheme)
	}
	if parsed.User != nil {
		return "", fmt.Errorf("%w: urls with embedded credentials are not allowed", ErrSecurity)
	}

	hostname := strings.ToLower(parsed.Hostname())
	if hostname == "" {
		return "", fmt.Errorf("%w: url missing hostname", ErrSecurity)
	}

	if port := parsed.Port(); port != "" && port != "443" {
		return "", fmt.Errorf("%w: non-standard port %s not allowed", ErrSecurity, port)
	}

	if net.ParseIP(hostname) != nil {
		return "", fmt.Errorf("%w: ip addresses not allowed, use domain names only", ErrSecurity)
	}
	if _, ok := localhostVariants[hostname]; ok {
		return "", fmt.Errorf("%w: localhost urls not allowed (ssrf prevention)", ErrSecurity)
	}

	allowed := false
	for _, d := range AllowedDomains {
		if hostname == d {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", fmt.Errorf("%w: domain %q not in whitelist, allowed domains: %s", ErrSecurity, hostname, strings.Join(AllowedDomains, ", "))
	}

	if strings.Contains(parsed.Path, "@") {
		return "", fmt.Errorf("%w: @ symbol in url path not allowed (potential injection)", ErrSecurity)
	}
	if strings.Contains(parsed.Path, "..") {
		return "", fmt.Errorf("%w: path traversal (..) in url not allowed", ErrSecurity)
	}

	parsed.Fragment = ""
	parsed.Host = hostname
	normalized := parsed.String()
	normalized = strings.Replace(normalized, ":443", "", 1)
	return normalized, nil
}
