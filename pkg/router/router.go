// Package router maps a node's terminal classification onto routing targets
// and output fields, enforcing the precedence contract between
// condition-specific mappings and generic output aliasing.
package router

import "strings"

// End is the routing target that terminates a composed graph early.
const End = "END"

// Condition routes a specific classification value. Target names the next
// node, or End. Output assigns result fields when the condition fires.
type Condition struct {
	Value  string            `json:"value" toml:"value"`
	Target string            `json:"target,omitempty" toml:"target"`
	Output map[string]string `json:"output,omitempty" toml:"output"`
}

// Rules combines a node's conditions with its generic output aliases.
// Aliases map an output field to a source field; they only populate fields
// a condition has not already set.
type Rules struct {
	Conditions []Condition       `json:"conditions,omitempty" toml:"conditions"`
	Aliases    map[string]string `json:"aliases,omitempty" toml:"aliases"`
}

// Route returns the routing target for a classification value, matched
// case-insensitively. ok is false when no condition names the value.
func (r Rules) Route(classification string) (string, bool) {
	for _, c := range r.Conditions {
		if strings.EqualFold(c.Value, classification) {
			if c.Target == "" {
				return End, true
			}
			return c.Target, true
		}
	}
	return "", false
}

// Apply resolves the output fields for a classification. Condition-specific
// output values are set first and take precedence; aliases then fill only
// fields that remain unset, drawing values from the source map. Fields is
// never mutated.
func (r Rules) Apply(classification string, fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = v
	}

	for _, c := range r.Conditions {
		if !strings.EqualFold(c.Value, classification) {
			continue
		}
		for field, value := range c.Output {
			out[field] = value
		}
		break
	}

	for field, source := range r.Aliases {
		if existing, ok := out[field]; ok && existing != "" {
			continue
		}
		if v, ok := out[source]; ok && v != "" {
			out[field] = v
		}
	}

	return out
}
