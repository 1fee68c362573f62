package models

import "sort"

// Border presets, keyed by preset name. Each preset is a complete "borders"
// style category.
var vintageBorders = map[string]StyleSet{
	"classic": {
		"frame": {
			"border":        "2px solid #5b4636",
			"border-radius": "2px",
			"padding":       "2em",
		},
	},
	"ornate": {
		"frame": {
			"border":        "6px double #8b6b3d",
			"border-radius": "8px",
			"padding":       "2.5em",
			"box-shadow":    "0 0 0 4px #f4ecd8, 0 0 0 6px #8b6b3d",
		},
		"corners": {
			"border-image": "linear-gradient(45deg, #8b6b3d, #c9a86a) 1",
		},
	},
	"art_deco": {
		"frame": {
			"border":     "3px solid #1c1c1c",
			"outline":    "1px solid #c9a227",
			"padding":    "2em 3em",
			"box-shadow": "inset 0 0 0 6px #c9a227",
		},
	},
	"victorian": {
		"frame": {
			"border":        "4px ridge #6e4b2a",
			"border-radius": "12px",
			"padding":       "3em",
		},
	},
}

// Page layout presets, keyed by preset name
var pageLayouts = map[string]Properties{
	"standard": {
		"max-width":   "42em",
		"margin":      "0 auto",
		"line-height": "1.6",
	},
	"manuscript": {
		"max-width":   "36em",
		"margin":      "1in auto",
		"line-height": "2",
		"font-family": "Courier New, monospace",
		"font-size":   "12pt",
		"text-indent": "0.5in",
	},
	"novel": {
		"max-width":   "30em",
		"margin":      "0 auto",
		"line-height": "1.5",
		"text-align":  "justify",
		"hyphens":     "auto",
	},
	"poetry": {
		"max-width":   "28em",
		"margin":      "0 auto",
		"white-space": "pre-wrap",
		"text-align":  "left",
	},
}

// VintageBorder returns a copy of the named border preset
func VintageBorder(name string) (StyleSet, bool) {
	set, ok := vintageBorders[name]
	if !ok {
		return nil, false
	}
	return set.Copy(), true
}

// VintageBorderNames lists the border presets in sorted order
func VintageBorderNames() []string {
	return sortedKeys(vintageBorders)
}

// PageLayout returns a copy of the named layout preset
func PageLayout(name string) (Properties, bool) {
	props, ok := pageLayouts[name]
	if !ok {
		return nil, false
	}
	return props.Copy(), true
}

// PageLayoutNames lists the layout presets in sorted order
func PageLayoutNames() []string {
	return sortedKeys(pageLayouts)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
