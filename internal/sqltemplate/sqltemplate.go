// Package sqltemplate substitutes `{name}` placeholders in a SQL cell's
// source with the string form of namespace values.
//
// Narrowed from mbflow's internal/application/template engine
// (engine.go's templatePattern + resolver.go's ResolveVariable): that
// engine resolves dotted/bracketed paths against env/input namespaces for
// workflow node configuration, where dotted paths express nesting on
// purpose. A SQL cell's namespace has no nesting to express — every name
// is a bare module-level variable — so this package keeps only the
// placeholder-scan-and-substitute shape and drops path traversal,
// strict-mode toggles, and the env/input split entirely.
package sqltemplate

import (
	"fmt"
	"regexp"
)

var placeholderPattern = regexp.MustCompile(`\{(\w+)\}`)

// Names returns the distinct `{name}` references in source, in
// first-occurrence order.
func Names(source string) []string {
	seen := map[string]bool{}
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(source, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// MissingName returns the first name referenced by source that is absent
// from namespace, and true, or ("", false) if every reference resolves.
func MissingName(source string, namespace map[string]any) (string, bool) {
	for _, name := range Names(source) {
		if _, ok := namespace[name]; !ok {
			return name, true
		}
	}
	return "", false
}

// Substitute replaces every `{name}` in source with the string form of
// namespace[name]. Callers must run MissingName first: Substitute assumes
// every reference resolves and is a literal-substitution query builder,
// not a parameterized one — the value's string form is spliced directly
// into the query text.
func Substitute(source string, namespace map[string]any) string {
	return placeholderPattern.ReplaceAllStringFunc(source, func(match string) string {
		name := match[1 : len(match)-1]
		return fmt.Sprintf("%v", namespace[name])
	})
}
