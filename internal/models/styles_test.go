package models

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMergeStylesPrecedence(t *testing.T) {
	a := Styles{
		StyleBorders: {
			"frame":  {"border": "1px solid black", "padding": "1em"},
			"shadow": {"box-shadow": "none"},
		},
	}
	b := Styles{
		StyleBorders: {
			"frame": {"border": "2px dashed red"},
		},
		StyleFonts: {
			"body": {"font-family": "Georgia"},
		},
	}

	merged := MergeStyles(a, b)

	want := Styles{
		StyleBorders: {
			"frame":  {"border": "2px dashed red"},
			"shadow": {"box-shadow": "none"},
		},
		StyleFonts: {
			"body": {"font-family": "Georgia"},
		},
	}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Errorf("merged styles mismatch (-want +got):\n%s", diff)
	}

	merged[StyleBorders]["frame"]["border"] = "changed"
	if a[StyleBorders]["frame"]["border"] != "1px solid black" {
		t.Error("merge result aliases dst")
	}
	if b[StyleBorders]["frame"]["border"] != "2px dashed red" {
		t.Error("merge result aliases src")
	}
}

func TestFlattenCSS(t *testing.T) {
	testCases := []struct {
		name     string
		entries  []Properties
		expected string
	}{
		{name: "empty", expected: ""},
		{
			name:     "sorted keys",
			entries:  []Properties{{"margin": "0", "color": "red"}},
			expected: "color: red; margin: 0",
		},
		{
			name: "last write wins and keeps first position",
			entries: []Properties{
				{"color": "red", "margin": "0"},
				{"padding": "1em"},
				{"color": "blue"},
			},
			expected: "color: blue; margin: 0; padding: 1em",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FlattenCSS(tc.entries...); got != tc.expected {
				t.Errorf("FlattenCSS = %q, want %q", got, tc.expected)
			}
		})
	}
}

func TestStyleAccessorsNeverNil(t *testing.T) {
	var s Styles
	if s.Borders() == nil || s.Colors() == nil || s.Fonts() == nil || s.Text() == nil || s.Background() == nil {
		t.Error("accessors must return non-nil sets")
	}
	if len(s.Borders().Ordered()) != 0 {
		t.Error("empty category should have no entries")
	}
}

func TestPresetsAreCopies(t *testing.T) {
	border, ok := VintageBorder("ornate")
	if !ok {
		t.Fatal("ornate border preset missing")
	}
	border["frame"]["border"] = "none"
	again, _ := VintageBorder("ornate")
	if again["frame"]["border"] == "none" {
		t.Error("mutating a preset copy changed the catalog")
	}

	layout, ok := PageLayout("manuscript")
	if !ok {
		t.Fatal("manuscript layout preset missing")
	}
	layout["margin"] = "0"
	again2, _ := PageLayout("manuscript")
	if again2["margin"] == "0" {
		t.Error("mutating a layout copy changed the catalog")
	}

	if _, ok := PageLayout("missing"); ok {
		t.Error("unknown layout should not be found")
	}
	if names := PageLayoutNames(); len(names) == 0 || names[0] != "manuscript" {
		t.Errorf("unexpected layout names %v", names)
	}
}
