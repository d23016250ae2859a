package addons

import "net/http"

// Addon is a single response transformation. Apply mutates the exchange
// in place and must be a no-op when the exchange carries no response.
// Addons never read or write the request beyond its method.
type Addon interface {
	// Name returns the canonical addon name.
	Name() string

	// Apply runs the transformation against one exchange.
	Apply(ex *Exchange)
}

// mutationMethods are the request methods treated as state-changing for
// CORS/CORP insertion gating.
var mutationMethods = map[string]bool{
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// corsHeaders are the permissive CORS headers set by the inserter and
// preflight addons, in a fixed order.
var corsHeaders = [][2]string{
	{"Access-Control-Allow-Origin", "*"},
	{"Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS, HEAD"},
	{"Access-Control-Allow-Headers", "*"},
	{"Access-Control-Max-Age", "86400"},
	{"Access-Control-Expose-Headers", "*"},
}

func setCORSHeaders(resp *Response) {
	for _, h := range corsHeaders {
		resp.Header.Set(h[0], h[1])
	}
}

// isSuccessfulMutation reports whether the exchange is a mutation-method
// request whose response landed in [100,300).
func isSuccessfulMutation(ex *Exchange) bool {
	if !mutationMethods[ex.Method] {
		return false
	}
	code := ex.Response.StatusCode
	return code >= 100 && code < 300
}

// headerRemover deletes a fixed set of response headers. CSP, COEP and
// COOP removal are all instances of this with different header lists.
type headerRemover struct {
	name    string
	headers []string
}

func (a *headerRemover) Name() string { return a.name }

func (a *headerRemover) Apply(ex *Exchange) {
	if ex.Response == nil {
		return
	}
	for _, h := range a.headers {
		ex.Response.Header.Del(h)
	}
}

// NewCSPRemoverAddon removes Content-Security-Policy headers so
// restricted pages can be modified during testing.
func NewCSPRemoverAddon() Addon {
	return &headerRemover{
		name: "CSPRemoverAddon",
		headers: []string{
			"content-security-policy",
			"content-security-policy-report-only",
		},
	}
}

// NewCOEPRemoverAddon removes Cross-Origin-Embedder-Policy headers so
// cross-origin resources can be embedded.
func NewCOEPRemoverAddon() Addon {
	return &headerRemover{
		name: "COEPRemoverAddon",
		headers: []string{
			"cross-origin-embedder-policy",
			"cross-origin-embedder-policy-report-only",
		},
	}
}

// NewCOOPRemoverAddon removes Cross-Origin-Opener-Policy headers so
// cross-origin window interactions are not restricted.
func NewCOOPRemoverAddon() Addon {
	return &headerRemover{
		name: "COOPRemoverAddon",
		headers: []string{
			"cross-origin-opener-policy",
			"cross-origin-opener-policy-report-only",
		},
	}
}

// corpInserter sets Cross-Origin-Resource-Policy: cross-origin on
// successful mutation responses.
type corpInserter struct{}

func (corpInserter) Name() string { return "CORPInserterAddon" }

func (corpInserter) Apply(ex *Exchange) {
	if ex.Response == nil || !isSuccessfulMutation(ex) {
		return
	}
	ex.Response.Header.Set("Cross-Origin-Resource-Policy", "cross-origin")
}

// NewCORPInserterAddon returns the CORP inserter.
func NewCORPInserterAddon() Addon { return corpInserter{} }

// corsInserter adds the permissive CORS header set to successful mutation
// responses, so webhook endpoints answer cross-origin calls.
type corsInserter struct{}

func (corsInserter) Name() string { return "CORSInserterForWebhooksAddon" }

func (corsInserter) Apply(ex *Exchange) {
	if ex.Response == nil || !isSuccessfulMutation(ex) {
		return
	}
	setCORSHeaders(ex.Response)
}

// NewCORSInserterForWebhooksAddon returns the CORS inserter.
func NewCORSInserterForWebhooksAddon() Addon { return corsInserter{} }

// corsPreflight repairs servers that answer an OPTIONS preflight with
// 405 instead of implementing it: the response becomes an empty 204 with
// permissive CORS headers, which keeps browsers from blocking the real
// request that follows.
type corsPreflight struct{}

func (corsPreflight) Name() string { return "CORSPreflightForWebhooksAddon" }

func (corsPreflight) Apply(ex *Exchange) {
	if ex.Response == nil {
		return
	}
	if ex.Method != http.MethodOptions || ex.Response.StatusCode != http.StatusMethodNotAllowed {
		return
	}
	ex.Response.StatusCode = http.StatusNoContent
	ex.Response.Reason = "No Content"
	ex.Response.Body = []byte{}
	setCORSHeaders(ex.Response)
}

// NewCORSPreflightForWebhooksAddon returns the preflight rewriter.
func NewCORSPreflightForWebhooksAddon() Addon { return corsPreflight{} }
