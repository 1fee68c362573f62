package models

import (
	"sort"
	"strings"
)

// Known style categories
const (
	StyleBorders    = "borders"
	StyleColors     = "colors"
	StyleFonts      = "fonts"
	StyleText       = "text"
	StyleBackground = "background"
)

// KnownStyleCategories lists the categories every new template is seeded with
var KnownStyleCategories = []string{StyleBorders, StyleColors, StyleFonts, StyleText, StyleBackground}

// Properties maps a CSS property to its value
type Properties map[string]string

// StyleSet maps a style name to its properties
type StyleSet map[string]Properties

// Styles maps a style category to its named styles
type Styles map[string]StyleSet

// Copy returns an independent copy of p
func (p Properties) Copy() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Copy returns an independent copy of s
func (s StyleSet) Copy() StyleSet {
	if s == nil {
		return nil
	}
	out := make(StyleSet, len(s))
	for name, props := range s {
		out[name] = props.Copy()
	}
	return out
}

// Names returns the style names in sorted order
func (s StyleSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ordered returns the properties of every style, ordered by style name
func (s StyleSet) Ordered() []Properties {
	out := make([]Properties, 0, len(s))
	for _, name := range s.Names() {
		out = append(out, s[name])
	}
	return out
}

// Copy returns an independent deep copy of s
func (s Styles) Copy() Styles {
	if s == nil {
		return nil
	}
	out := make(Styles, len(s))
	for category, set := range s {
		out[category] = set.Copy()
	}
	return out
}

// Category returns the named category, never nil
func (s Styles) Category(name string) StyleSet {
	if set, ok := s[name]; ok && set != nil {
		return set
	}
	return StyleSet{}
}

func (s Styles) Borders() StyleSet    { return s.Category(StyleBorders) }
func (s Styles) Colors() StyleSet     { return s.Category(StyleColors) }
func (s Styles) Fonts() StyleSet      { return s.Category(StyleFonts) }
func (s Styles) Text() StyleSet       { return s.Category(StyleText) }
func (s Styles) Background() StyleSet { return s.Category(StyleBackground) }

// Categories returns the category names in sorted order
func (s Styles) Categories() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MergeStyles returns the union of dst and src. Styles are combined per
// category and per name; a style name present in both takes src's properties.
// Neither input is aliased by the result.
func MergeStyles(dst, src Styles) Styles {
	out := dst.Copy()
	if out == nil {
		out = Styles{}
	}
	for category, set := range src {
		target, ok := out[category]
		if !ok || target == nil {
			target = StyleSet{}
			out[category] = target
		}
		for name, props := range set {
			target[name] = props.Copy()
		}
	}
	return out
}

// FlattenCSS joins properties into an inline declaration list of the form
// "key: value; key: value". Later entries win on a repeated key; a key keeps
// the position where it was first seen. Keys inside one entry are sorted.
func FlattenCSS(entries ...Properties) string {
	var order []string
	values := make(map[string]string)

	for _, props := range entries {
		keys := make([]string, 0, len(props))
		for k := range props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, seen := values[k]; !seen {
				order = append(order, k)
			}
			values[k] = props[k]
		}
	}

	decls := make([]string, 0, len(order))
	for _, k := range order {
		decls = append(decls, k+": "+values[k])
	}
	return strings.Join(decls, "; ")
}
