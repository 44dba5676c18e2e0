package minify

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/prasenjit/oas-minify/internal/document"
)

// httpMethods lists the operation fields of a Path Item object, in the
// order the OpenAPI specification declares them.
var httpMethods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

func isHTTPMethod(s string) bool {
	for _, m := range httpMethods {
		if m == s {
			return true
		}
	}
	return false
}

// OperationRef identifies one operation inside a document.
type OperationRef struct {
	Method      string     `json:"method"` // lower case, as keyed in the path item
	Path        string     `json:"path"`
	OperationID string     `json:"operationId,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	Description string     `json:"description,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Node        *yaml.Node `json:"-"`
	PathItem    *yaml.Node `json:"-"`
}

// Key is the (method, path) identity of the operation, e.g. "GET /users".
func (o OperationRef) Key() string {
	return strings.ToUpper(o.Method) + " " + o.Path
}

// Label is the operationId, or the key when the operation has none.
func (o OperationRef) Label() string {
	if o.OperationID != "" {
		return o.OperationID
	}
	return o.Key()
}

// Location is the dotted document path of the operation.
func (o OperationRef) Location() string {
	return "paths." + o.Path + "." + o.Method
}

// MatchKind records which rule matched a request.
type MatchKind string

const (
	MatchOperationID MatchKind = "operationId"
	MatchMethodPath  MatchKind = "methodPath"
	MatchText        MatchKind = "text"
)

// OperationMatch is one operation selected by one request. A request that
// matched several operations yields one Ambiguous match per operation.
type OperationMatch struct {
	Request   string       `json:"request"`
	Kind      MatchKind    `json:"kind"`
	Ambiguous bool         `json:"ambiguous,omitempty"`
	Operation OperationRef `json:"operation"`
}

// Locator finds operations in a document by id, method and path, or text.
type Locator struct {
	ops   []OperationRef
	byID  map[string][]int
	byKey map[string]int
}

// NewLocator indexes every operation of doc. The returned diagnostics report
// a malformed paths object and operationIds used more than once.
func NewLocator(doc *yaml.Node) (*Locator, Diagnostics) {
	l := &Locator{
		byID:  make(map[string][]int),
		byKey: make(map[string]int),
	}
	var diags Diagnostics

	root := document.Root(doc)
	paths := document.Lookup(root, "paths")
	switch {
	case paths == nil:
		diags.errorf(CodeInvalidDocument, "paths", "document has no paths object")
		return l, diags
	case !document.IsMapping(paths):
		diags.errorf(CodeInvalidDocument, "paths", "paths must be a mapping")
		return l, diags
	}

	for path, item := range document.Pairs(paths) {
		for key, op := range document.Pairs(item) {
			if !isHTTPMethod(key) || !document.IsMapping(op) {
				continue
			}
			ref := OperationRef{
				Method:      key,
				Path:        path,
				OperationID: document.String(op, "operationId"),
				Summary:     document.String(op, "summary"),
				Description: document.String(op, "description"),
				Tags:        document.Strings(op, "tags"),
				Node:        op,
				PathItem:    item,
			}
			idx := len(l.ops)
			l.ops = append(l.ops, ref)
			l.byKey[ref.Key()] = idx
			if ref.OperationID != "" {
				l.byID[ref.OperationID] = append(l.byID[ref.OperationID], idx)
			}
		}
	}

	for _, op := range l.ops {
		ids := l.byID[op.OperationID]
		if op.OperationID == "" || len(ids) < 2 || l.ops[ids[0]].Key() != op.Key() {
			continue
		}
		diags.warnf(CodeDuplicateOperationID, op.Location()+".operationId",
			"operationId %q is used by %d operations", op.OperationID, len(ids))
	}

	return l, diags
}

// Operations returns every operation in document order.
func (l *Locator) Operations() []OperationRef {
	return l.ops
}

// Find resolves each request to operations. A request is tried as an exact
// operationId, then as "METHOD path" (or "METHOD:path"), then as a
// case-insensitive substring of summary or description. Results follow the
// request order and each operation appears at most once. Requests that match
// nothing or match ambiguously produce diagnostics; the others still resolve.
func (l *Locator) Find(requests []string) ([]OperationMatch, Diagnostics) {
	var (
		matches []OperationMatch
		diags   Diagnostics
		seen    = make(map[string]bool)
	)

	for _, raw := range requests {
		req := strings.TrimSpace(raw)
		if req == "" {
			continue
		}

		kind, found := l.match(req)
		if len(found) == 0 {
			diags = append(diags, Diagnostic{
				Severity: SeverityError,
				Code:     CodeOperationNotFound,
				Message:  fmt.Sprintf("no operation matches request %q", req),
				Request:  req,
			})
			continue
		}

		ambiguous := len(found) > 1
		if ambiguous {
			keys := make([]string, len(found))
			for i, idx := range found {
				keys[i] = l.ops[idx].Key()
			}
			diags = append(diags, Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeAmbiguousOperationRequest,
				Message:  fmt.Sprintf("request %q matches %s", req, strings.Join(keys, ", ")),
				Request:  req,
			})
		}

		for _, idx := range found {
			op := l.ops[idx]
			if seen[op.Key()] {
				continue
			}
			seen[op.Key()] = true
			matches = append(matches, OperationMatch{
				Request:   req,
				Kind:      kind,
				Ambiguous: ambiguous,
				Operation: op,
			})
		}
	}

	return matches, diags
}

func (l *Locator) match(req string) (MatchKind, []int) {
	if ids := l.byID[req]; len(ids) > 0 {
		return MatchOperationID, ids
	}

	if method, path, ok := parseMethodPath(req); ok {
		if idx, ok := l.byKey[strings.ToUpper(method)+" "+path]; ok {
			return MatchMethodPath, []int{idx}
		}
	}

	needle := strings.ToLower(req)
	var found []int
	for i, op := range l.ops {
		if strings.Contains(strings.ToLower(op.Summary), needle) ||
			strings.Contains(strings.ToLower(op.Description), needle) {
			found = append(found, i)
		}
	}
	return MatchText, found
}

// parseMethodPath splits "POST /users" or "POST:/users".
func parseMethodPath(req string) (method, path string, ok bool) {
	idx := strings.IndexAny(req, " :")
	if idx <= 0 {
		return "", "", false
	}
	method = strings.ToLower(req[:idx])
	path = strings.TrimSpace(req[idx+1:])
	if !isHTTPMethod(method) || !strings.HasPrefix(path, "/") {
		return "", "", false
	}
	return method, path, true
}

// FindOperations is a convenience wrapper that indexes doc and runs Find.
func FindOperations(doc *yaml.Node, requests []string) ([]OperationMatch, Diagnostics) {
	l, diags := NewLocator(doc)
	matches, found := l.Find(requests)
	return matches, append(diags, found...)
}
