package reconcile

import (
	"sort"
	"testing"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name       string
		desired    []string
		current    []string
		wantAdd    []string
		wantRemove []string
	}{
		{name: "both empty"},
		{name: "all new", desired: []string{"a", "b"}, wantAdd: []string{"a", "b"}},
		{name: "all removed", current: []string{"a", "b"}, wantRemove: []string{"a", "b"}},
		{name: "no change", desired: []string{"a", "b"}, current: []string{"b", "a"}},
		{
			name:       "mixed",
			desired:    []string{"a", "c"},
			current:    []string{"a", "b"},
			wantAdd:    []string{"c"},
			wantRemove: []string{"b"},
		},
		{
			name:    "repeated desired member counts once",
			desired: []string{"a", "a"},
			wantAdd: []string{"a"},
		},
		{
			name:    "repeated desired member already present",
			desired: []string{"a", "a"},
			current: []string{"a"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			add, remove := Diff(tt.desired, tt.current)
			assertSameSet(t, "toAdd", add, tt.wantAdd)
			assertSameSet(t, "toRemove", remove, tt.wantRemove)
		})
	}
}

func TestDiffFunc(t *testing.T) {
	type tag struct {
		id   int
		name string
	}

	desired := []tag{{name: "go"}, {name: "sql"}}
	current := []tag{{id: 1, name: "go"}, {id: 2, name: "http"}}

	add, remove := DiffFunc(desired, current, func(v tag) string { return v.name })

	if len(add) != 1 || add[0].name != "sql" {
		t.Errorf("toAdd = %v, want [sql]", add)
	}
	if len(remove) != 1 || remove[0].name != "http" {
		t.Errorf("toRemove = %v, want [http]", remove)
	}
	// Rows keyed the same keep their persisted identity.
	if remove[0].id != 2 {
		t.Errorf("removed row lost its id: %v", remove[0])
	}
}

func assertSameSet(t *testing.T, label string, got, want []string) {
	t.Helper()
	g := append([]string(nil), got...)
	w := append([]string(nil), want...)
	sort.Strings(g)
	sort.Strings(w)
	if len(g) != len(w) {
		t.Fatalf("%s = %v, want %v", label, got, want)
	}
	for i := range g {
		if g[i] != w[i] {
			t.Fatalf("%s = %v, want %v", label, got, want)
		}
	}
}
