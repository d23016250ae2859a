package addons

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// suggestionThreshold is the minimum normalized similarity ratio for a
// typo suggestion to be offered.
const suggestionThreshold = 0.6

// entry pairs an addon constructor with its identifiers.
type entry struct {
	canonical string
	alias     string
	summary   string
	build     func() Addon
}

// registry lists every addon in evaluation order. The order is fixed and
// does not depend on which addons are disabled.
var registry = []entry{
	{"CSPRemoverAddon", "CSP", "Removes Content-Security-Policy headers", NewCSPRemoverAddon},
	{"COEPRemoverAddon", "COEP", "Removes Cross-Origin-Embedder-Policy headers", NewCOEPRemoverAddon},
	{"COOPRemoverAddon", "COOP", "Removes Cross-Origin-Opener-Policy headers", NewCOOPRemoverAddon},
	{"CORPInserterAddon", "CORP", "Adds Cross-Origin-Resource-Policy to successful mutations", NewCORPInserterAddon},
	{"CORSInserterForWebhooksAddon", "CORS", "Adds permissive CORS headers to successful mutations", NewCORSInserterForWebhooksAddon},
	{"CORSPreflightForWebhooksAddon", "PREFLIGHT", "Rewrites OPTIONS 405 responses into CORS preflight answers", NewCORSPreflightForWebhooksAddon},
}

// UnknownIdentifierError reports an addon identifier that matched no
// alias or canonical name.
type UnknownIdentifierError struct {
	Name       string
	Suggestion string
}

func (e *UnknownIdentifierError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown addon %q: did you mean %s?", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("unknown addon %q: valid addons are %s", e.Name, strings.Join(Aliases(), ", "))
}

// Aliases returns the short alias of every addon in registry order.
func Aliases() []string {
	out := make([]string, 0, len(registry))
	for _, e := range registry {
		out = append(out, e.alias)
	}
	return out
}

// CanonicalNames returns the canonical name of every addon in registry
// order.
func CanonicalNames() []string {
	out := make([]string, 0, len(registry))
	for _, e := range registry {
		out = append(out, e.canonical)
	}
	return out
}

// Summary returns the one-line description for a canonical addon name.
func Summary(canonical string) string {
	for _, e := range registry {
		if e.canonical == canonical {
			return e.summary
		}
	}
	return ""
}

// Resolve canonicalizes user-supplied addon identifiers. Both short
// aliases and canonical names are accepted, case-insensitively. The
// first unrecognized identifier fails with *UnknownIdentifierError,
// carrying a typo suggestion when a known identifier is clearly similar.
func Resolve(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, name := range names {
		canonical, ok := lookup(name)
		if !ok {
			return nil, &UnknownIdentifierError{Name: name, Suggestion: closest(name)}
		}
		out = append(out, canonical)
	}
	return out, nil
}

func lookup(name string) (string, bool) {
	upper := strings.ToUpper(name)
	for _, e := range registry {
		if upper == strings.ToUpper(e.alias) || upper == strings.ToUpper(e.canonical) {
			return e.canonical, true
		}
	}
	return "", false
}

// closest returns the known identifier most similar to name, or "" when
// none clears the threshold. Identifiers are scanned in registry order,
// alias before canonical, and the first highest score wins.
func closest(name string) string {
	upper := strings.ToUpper(name)
	best := ""
	bestScore := 0.0
	for _, e := range registry {
		for _, candidate := range []string{e.alias, e.canonical} {
			score := similarity(upper, strings.ToUpper(candidate))
			if score > bestScore {
				best = candidate
				bestScore = score
			}
		}
	}
	if bestScore < suggestionThreshold {
		return ""
	}
	return best
}

// similarity is a normalized edit-distance ratio in [0,1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
