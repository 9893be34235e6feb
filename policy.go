package webmirror

import (
	"net/url"
	"regexp"
	"strings"
)

// Policy decides whether a URL is admissible for crawling. It is a pure
// predicate over domain scope, include/exclude patterns, and depth; the
// "not already completed / downloading" checks live in the engine, next to
// the state they depend on.
type Policy struct {
	maxDepth   int
	baseDomain string
	valid      []*regexp.Regexp
	exclude    []*regexp.Regexp
}

// NewPolicy compiles the configured patterns into a Policy.
// Returns EINVALID if any pattern fails to compile.
func NewPolicy(maxDepth int, baseDomain string, validPatterns, excludePatterns []string) (*Policy, error) {
	p := &Policy{
		maxDepth:   maxDepth,
		baseDomain: strings.ToLower(strings.TrimSpace(baseDomain)),
	}
	for _, pattern := range validPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, Errorf(EINVALID, "invalid valid_url_patterns entry %q: %v", pattern, err)
		}
		p.valid = append(p.valid, re)
	}
	for _, pattern := range excludePatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, Errorf(EINVALID, "invalid exclude_patterns entry %q: %v", pattern, err)
		}
		p.exclude = append(p.exclude, re)
	}
	return p, nil
}

// MaxDepth returns the configured depth bound.
func (p *Policy) MaxDepth() int { return p.maxDepth }

// Admit returns true iff all of the following hold:
// depth is within bound, the host is in the configured base domain
// (empty domain admits any host), no exclude pattern matches, and either
// no valid patterns are configured or at least one matches.
func (p *Policy) Admit(rawURL string, depth int) bool {
	if depth > p.maxDepth {
		return false
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}

	if p.baseDomain != "" && !strings.Contains(strings.ToLower(u.Host), p.baseDomain) {
		return false
	}

	for _, re := range p.exclude {
		if re.MatchString(rawURL) {
			return false
		}
	}

	if len(p.valid) == 0 {
		return true
	}
	for _, re := range p.valid {
		if re.MatchString(rawURL) {
			return true
		}
	}
	return false
}
