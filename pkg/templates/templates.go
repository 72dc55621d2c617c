// Package templates renders campaign bodies by substituting named
// placeholders of the form {{key}}. Values are operator-supplied recipient
// metadata, so no HTML escaping is applied: html/template would mangle the
// tracking URL and the operator's markup.
package templates

import "strings"

// Render replaces every literal occurrence of {{key}} for each key present
// in fields. Keys absent from the template are ignored; placeholders with no
// matching key are left verbatim. Pure and deterministic.
func Render(template string, fields map[string]string) string {
	if len(fields) == 0 {
		return template
	}
	pairs := make([]string, 0, len(fields)*2)
	for k, v := range fields {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
