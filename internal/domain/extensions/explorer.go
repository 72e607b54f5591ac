// Package extensions implements the commands and queries for assistants
// ("configurations") and the extensions attached to them.
//
// Extension providers are described by a Provider value with a typed argument
// schema. The Explorer is the registry the handlers consult; it is built once
// at startup and injected.
package extensions

import (
	"sort"
)

// ArgumentType is the JSON type of an extension argument
type ArgumentType string

const (
	ArgumentString  ArgumentType = "string"
	ArgumentNumber  ArgumentType = "number"
	ArgumentBoolean ArgumentType = "boolean"
	ArgumentObject  ArgumentType = "object"
	ArgumentArray   ArgumentType = "array"
)

// Argument formats with behaviour attached to them. Other formats such as
// "textarea" or "slider" are rendering hints only.
const (
	FormatPassword = "password"
	FormatSelect   = "select"
	FormatBucket   = "bucket"
)

// ArgumentSpec describes one configurable value of a provider
type ArgumentSpec struct {
	Type        ArgumentType            `json:"type"`
	Title       string                  `json:"title,omitempty"`
	Description string                  `json:"description,omitempty"`
	Format      string                  `json:"format,omitempty"`
	Required    bool                    `json:"required,omitempty"`
	Default     interface{}             `json:"default,omitempty"`
	Minimum     *float64                `json:"minimum,omitempty"`
	Maximum     *float64                `json:"maximum,omitempty"`
	Enum        []string                `json:"enum,omitempty"`
	Examples    []interface{}           `json:"examples,omitempty"`
	Properties  map[string]ArgumentSpec `json:"properties,omitempty"`
	Items       *ArgumentSpec           `json:"items,omitempty"`
}

// IsSecret reports whether values of this argument must never be shown
func (a ArgumentSpec) IsSecret() bool {
	return a.Format == FormatPassword
}

func (a ArgumentSpec) label(key string) string {
	if a.Title != "" {
		return a.Title
	}
	return key
}

// ProviderType groups providers in the admin UI
type ProviderType string

const (
	ProviderLLM   ProviderType = "llm"
	ProviderTool  ProviderType = "tool"
	ProviderOther ProviderType = "other"
)

// Provider describes an extension implementation and its argument schema
type Provider struct {
	Name        string                  `json:"name"`
	Title       string                  `json:"title"`
	Description string                  `json:"description,omitempty"`
	Type        ProviderType            `json:"type"`
	Arguments   map[string]ArgumentSpec `json:"arguments"`
}

// argumentKeys returns the argument names in a stable order
func argumentKeys(args map[string]ArgumentSpec) []string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Explorer maps provider names to their descriptions
type Explorer struct {
	providers map[string]*Provider
}

// NewExplorer creates an explorer over the given providers. A later provider
// with the same name replaces an earlier one.
func NewExplorer(providers ...Provider) *Explorer {
	e := &Explorer{providers: make(map[string]*Provider, len(providers))}
	for i := range providers {
		p := providers[i]
		e.providers[p.Name] = &p
	}
	return e
}

// GetExtension looks up a provider by name
func (e *Explorer) GetExtension(name string) (*Provider, bool) {
	p, ok := e.providers[name]
	return p, ok
}

// Specs returns all providers sorted by name
func (e *Explorer) Specs() []Provider {
	out := make([]Provider, 0, len(e.providers))
	for _, p := range e.providers {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
