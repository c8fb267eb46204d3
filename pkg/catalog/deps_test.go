package catalog

import (
	"slices"
	"testing"
)

func TestFormatDependenciesEmpty(t *testing.T) {
	r := FormatDependencies(nil, nil)
	if r.Groups == nil || len(r.Groups) != 0 {
		t.Errorf("Groups = %#v, want empty", r.Groups)
	}
	if r.Highlights == nil || len(r.Highlights) != 0 {
		t.Errorf("Highlights = %#v, want empty", r.Highlights)
	}
}

func TestFormatDependenciesHighlights(t *testing.T) {
	known := &Distribution{Name: "Foo::Bar", Index: 7}
	resolve := func(module string) *Distribution {
		if module == "Foo::Bar" {
			return known
		}
		return nil
	}
	raw := []Dependency{
		{Module: "Foo::Bar", Phase: "test"},
		{Module: "Baz", Phase: "test"},
	}

	r := FormatDependencies(raw, resolve)

	if len(r.Groups) != 1 || r.Groups[0].Phase != "test" || len(r.Groups[0].Deps) != 2 {
		t.Fatalf("Groups = %+v", r.Groups)
	}
	if !slices.Equal(r.Highlights, []int{7}) {
		t.Errorf("Highlights = %v, want [7]", r.Highlights)
	}
	foo, baz := r.Groups[0].Deps[0], r.Groups[0].Deps[1]
	if !foo.Resolved() || *foo.Index != 7 || foo.Distro != "Foo::Bar" {
		t.Errorf("Foo::Bar = %+v", foo)
	}
	if baz.Resolved() || baz.Distro != "" || baz.Version != NoVersion {
		t.Errorf("Baz = %+v", baz)
	}
}

func TestFormatDependenciesPhaseOrder(t *testing.T) {
	c := loadString(t, sampleMap)
	c.CacheModuleMapping("XML::Simple::Tree", "XML::Simple")

	raw := []Dependency{
		{Module: "XML::Simple", Version: "2.18"},
		{Module: "Test::More", Version: "0.88", Phase: "test"},
		{Module: "XML::Simple::Tree", Phase: "runtime"},
		{Module: "ExtUtils::MakeMaker", Phase: "configure"},
		{Module: "Test::Deep", Phase: "test"},
	}
	r := c.FormatDependencies(raw)

	var phases []string
	for _, g := range r.Groups {
		phases = append(phases, g.Phase)
	}
	if !slices.Equal(phases, []string{"runtime", "test", "configure"}) {
		t.Fatalf("phases = %v", phases)
	}
	if got := r.Groups[1].Deps; got[0].Module != "Test::More" || got[1].Module != "Test::Deep" {
		t.Errorf("test deps out of order: %+v", got)
	}
	if r.Groups[0].Deps[0].Version != "2.18" {
		t.Errorf("version = %q", r.Groups[0].Deps[0].Version)
	}
	// Two modules of the same distribution highlight it twice.
	simple := c.FindDistroByName("XML::Simple").Index
	if !slices.Equal(r.Highlights, []int{simple, simple}) {
		t.Errorf("Highlights = %v", r.Highlights)
	}
	if r.Len() != 5 {
		t.Errorf("Len = %d, want 5", r.Len())
	}
}
