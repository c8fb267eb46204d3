package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	errs "github.com/matzehuels/cpanmap/pkg/errors"
)

func TestLoadSingleDistribution(t *testing.T) {
	c := loadString(t, "[MAINTAINERS]\nGRANTM\n[DISTRIBUTIONS]\nFoo::Bar,,0,1,2\n")

	d := c.At(1, 2)
	if d == nil || d.Name != "Foo::Bar" {
		t.Fatalf("At(1,2) = %v, want Foo::Bar", d)
	}
	if got := c.Maintainers[0].DistroCount; got != 1 {
		t.Errorf("DistroCount = %d, want 1", got)
	}
	if d.Maintainer != c.Maintainers[0] {
		t.Error("distribution not linked to its maintainer")
	}
	if d.Namespace != nil {
		t.Errorf("Namespace = %v, want nil", d.Namespace)
	}
	if c.LoadID == "" {
		t.Error("LoadID is empty")
	}
}

func TestLoadSample(t *testing.T) {
	c := loadString(t, sampleMap)

	if len(c.Maintainers) != 2 || len(c.Namespaces) != 2 || len(c.Distributions) != 4 {
		t.Fatalf("counts = %d/%d/%d, want 2/2/4", len(c.Maintainers), len(c.Namespaces), len(c.Distributions))
	}

	m := c.Maintainers[0]
	if m.ID != "GRANTM" || m.Name != "Grant McLean" || m.GravatarID != "abc123" {
		t.Errorf("maintainer 0 = %+v", m)
	}
	if c.Maintainers[1].Name != "" || c.Maintainers[1].DisplayName() != "MIYAGAWA" {
		t.Errorf("maintainer 1 = %+v", c.Maintainers[1])
	}
	if c.Maintainers[1].DistroCount != 2 {
		t.Errorf("MIYAGAWA DistroCount = %d, want 2", c.Maintainers[1].DistroCount)
	}

	ns := c.Namespaces[0]
	if ns.Name != "XML" || ns.Colour != "3" || ns.Mass != 31 {
		t.Errorf("namespace 0 = %+v", ns)
	}

	plack := c.FindDistroByName("Plack")
	if plack == nil {
		t.Fatal("Plack not found")
	}
	if plack.MainModule != "Plack::Request" || plack.DocModule() != "Plack::Request" {
		t.Errorf("Plack main module = %q", plack.MainModule)
	}
	if plack.Namespace != c.Namespaces[1] {
		t.Errorf("Plack namespace = %v", plack.Namespace)
	}

	simple := c.FindDistroByName("XML::Simple")
	if simple.Rating == nil || simple.Rating.Score != 4.5 || simple.Rating.Count != 12 || simple.Rating.Stars != 45 {
		t.Errorf("XML::Simple rating = %+v", simple.Rating)
	}
	if simple.DisplayName != "XML-Simple" {
		t.Errorf("DisplayName = %q", simple.DisplayName)
	}

	// An unreadable rating is dropped, the distribution is kept.
	foo := c.FindDistroByName("Foo-Bar")
	if foo == nil || foo.Rating != nil {
		t.Errorf("Foo-Bar = %+v", foo)
	}

	if v, ok := c.MetaString("map_date"); !ok || v != "2011-03-04" {
		t.Errorf("map_date = %q, %v", v, ok)
	}
	if got := c.Meta["zoom_scales"].Strings(); strings.Join(got, " ") != "3 5 8" {
		t.Errorf("zoom_scales = %v", got)
	}
}

func TestLoadSpatialConsistency(t *testing.T) {
	c := loadString(t, sampleMap)
	for _, d := range c.Distributions {
		got := c.At(d.Row, d.Col)
		want := c.Distributions[c.distroIndex[d.Name]]
		if got != want {
			t.Errorf("At(%d,%d) = %v, want %v", d.Row, d.Col, got.Name, want.Name)
		}
	}
}

func TestLoadSkipsMalformed(t *testing.T) {
	data := `[MAINTAINERS]
GRANTM
,Nobody
[NAMESPACES]
XML,3
[DISTRIBUTIONS]
Good,,0,1,1
Bad::Row,,0,zz,1
Short,,0
Orphan,,5,2,2
Also::Good,,0,2,2
`
	c := loadString(t, data)

	if len(c.Maintainers) != 1 {
		t.Errorf("maintainers = %d, want 1", len(c.Maintainers))
	}
	if len(c.Namespaces) != 0 {
		t.Errorf("namespaces = %d, want 0", len(c.Namespaces))
	}
	if len(c.Distributions) != 2 {
		t.Fatalf("distributions = %d, want 2", len(c.Distributions))
	}
	if c.Stats.Malformed != 5 {
		t.Errorf("Malformed = %d, want 5", c.Stats.Malformed)
	}
	if c.FindDistroByName("Bad::Row") != nil {
		t.Error("malformed distribution was admitted")
	}
	if c.Maintainers[0].DistroCount != 2 {
		t.Errorf("DistroCount = %d, want 2", c.Maintainers[0].DistroCount)
	}
}

func TestLoadStrict(t *testing.T) {
	data := "[MAINTAINERS]\nGRANTM\n[DISTRIBUTIONS]\nBad,,0,zz,1\n"
	_, err := Load(context.Background(), strings.NewReader(data), LoadOptions{Logger: quietLogger(), Strict: true})
	if !errs.Is(err, errs.ErrCodeMalformedRecord) {
		t.Fatalf("err = %v, want MALFORMED_RECORD", err)
	}
}

func TestLoadBrokenMarker(t *testing.T) {
	_, err := Load(context.Background(), strings.NewReader("[MAINTAINERS\nGRANTM\n"), LoadOptions{Logger: quietLogger()})
	if !errs.Is(err, errs.ErrCodeMalformedRecord) {
		t.Fatalf("err = %v, want MALFORMED_RECORD", err)
	}
}

func TestLoadIgnoresUnknownSections(t *testing.T) {
	data := `Stray,,0,1,1
[MAINTAINERS]
GRANTM
[EXTRAS]
Hidden,,0,1,1
[DISTRIBUTIONS]

Shown,,0,1,1
`
	c := loadString(t, data)
	if len(c.Distributions) != 1 || c.Distributions[0].Name != "Shown" {
		t.Fatalf("distributions = %v", c.Distributions)
	}
	if c.Stats.Ignored != 2 {
		t.Errorf("Ignored = %d, want 2", c.Stats.Ignored)
	}
}

func TestLoadNamespaceOutOfRange(t *testing.T) {
	c := loadString(t, "[MAINTAINERS]\nGRANTM\n[DISTRIBUTIONS]\nFoo,9,0,1,1\n")
	if d := c.FindDistroByName("Foo"); d == nil || d.Namespace != nil {
		t.Fatalf("Foo = %+v, want no namespace", d)
	}
}

func TestLoadCollisionLastWriteWins(t *testing.T) {
	c := loadString(t, "[MAINTAINERS]\nGRANTM\n[DISTRIBUTIONS]\nFirst,,0,4,4\nSecond,,0,4,4\n")

	if got := c.At(4, 4); got == nil || got.Name != "Second" {
		t.Fatalf("At(4,4) = %v, want Second", got)
	}
	if c.FindDistroByName("First") == nil || c.FindDistroByName("Second") == nil {
		t.Error("both distributions must stay reachable by name")
	}
	if c.Stats.Collisions != 1 {
		t.Errorf("Collisions = %d, want 1", c.Stats.Collisions)
	}
	if c.Spatial().Cells() != 1 {
		t.Errorf("Cells = %d, want 1", c.Spatial().Cells())
	}
}

func TestLoadMetaOverwrite(t *testing.T) {
	c := loadString(t, "[META]\nk,one\nk,two,three\n")
	v := c.Meta["k"]
	if !v.IsList() || strings.Join(v.Strings(), ",") != "two,three" {
		t.Errorf("k = %+v", v)
	}
}

func TestLoadCancelled(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("[MAINTAINERS]\nGRANTM\n[DISTRIBUTIONS]\n")
	for i := 0; i < ctxCheckInterval*2; i++ {
		sb.WriteString("D,,0,1,1\n")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Load(ctx, strings.NewReader(sb.String()), LoadOptions{Logger: quietLogger()}); err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cpan-map-data.txt")
	if err := os.WriteFile(path, []byte(sampleMap), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFile(context.Background(), path, LoadOptions{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(c.Distributions) != 4 {
		t.Errorf("distributions = %d", len(c.Distributions))
	}

	_, err = LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing"), LoadOptions{Logger: quietLogger()})
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}
