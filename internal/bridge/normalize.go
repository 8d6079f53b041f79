package bridge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dexbridge/dexscan/internal/dex"
)

// DefaultSystemPrefixes lists the framework namespaces excluded from
// bridge generation. Callers can override the set through
// configuration; an app never needs bridges into the platform itself.
var DefaultSystemPrefixes = []string{
	"android.",
	"androidx.",
	"com.google.android.",
	"java.",
	"javax.",
	"kotlin.",
	"kotlinx.",
	"dalvik.",
	"org.xml.",
	"org.w3c.",
	"org.json.",
}

// Filter deduplicates decoded classes by qualified name (the first
// occurrence wins, so the first DEX shard shadows later ones), drops
// classes in the given system namespaces and classes left with no
// methods, and returns the survivors sorted by name in ascending byte
// order. Pure; the input is not modified, and running it on its own
// output is a no-op.
func Filter(classes []dex.Class, systemPrefixes []string) []dex.Class {
	seen := make(map[string]struct{}, len(classes))
	out := make([]dex.Class, 0, len(classes))
	for _, c := range classes {
		if _, dup := seen[c.Name]; dup {
			continue
		}
		seen[c.Name] = struct{}{}
		if isSystemClass(c.Name, systemPrefixes) || len(c.Methods) == 0 {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func isSystemClass(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// Normalize filters classes and maps the survivors onto the
// generator-facing model, synthesizing positional parameter names for
// whatever parameter types are present.
func Normalize(classes []dex.Class, systemPrefixes []string) []Class {
	filtered := Filter(classes, systemPrefixes)
	out := make([]Class, len(filtered))
	for i, c := range filtered {
		nc := Class{
			Name:    c.Name,
			Methods: make([]Method, len(c.Methods)),
		}
		for j, m := range c.Methods {
			nc.Methods[j] = Method{
				Name:       m.Name,
				ReturnType: m.ReturnType,
				Public:     m.Public,
				Static:     m.Static,
				Parameters: placeholderParams(m.ParamTypes),
			}
		}
		out[i] = nc
	}
	return out
}

// placeholderParams names parameters param0, param1, ... in positional
// order.
func placeholderParams(types []string) []Parameter {
	if len(types) == 0 {
		return nil
	}
	params := make([]Parameter, len(types))
	for i, t := range types {
		params[i] = Parameter{Name: fmt.Sprintf("param%d", i), Type: t}
	}
	return params
}
