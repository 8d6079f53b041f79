// Package bridge defines the normalized class model handed to bridge
// code generators, and the filtering that turns raw decoded classes
// into it.
package bridge

// Class is one bridgeable class in the generator-facing model.
type Class struct {
	Name    string   `json:"name"`
	Methods []Method `json:"methods"`
}

// Method is one bridgeable method. Parameters carry placeholder names;
// original parameter names do not survive compilation to DEX.
type Method struct {
	Name       string      `json:"name"`
	ReturnType string      `json:"returnType"`
	Public     bool        `json:"public"`
	Static     bool        `json:"static"`
	Parameters []Parameter `json:"parameters"`
}

// Parameter is one synthesized method parameter.
type Parameter struct {
	Name string `json:"name"`
	Type string `json:"type"`
}
