package depgraph

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cpanmap/pkg/catalog"
)

func fixture(t *testing.T) (*catalog.Catalog, *catalog.Distribution, *catalog.DependencyReport, *catalog.ReverseDependencyReport) {
	t.Helper()
	data := "[MAINTAINERS]\nGRANTM\n[DISTRIBUTIONS]\nXML::Simple,,0,1,1\nXML::Parser,,0,1,2\nConfig::Any,,0,1,3\n"
	c, err := catalog.Load(context.Background(), strings.NewReader(data), catalog.LoadOptions{Logger: log.New(io.Discard)})
	if err != nil {
		t.Fatal(err)
	}
	c.CacheModuleMapping("XML::Parser::Expat", "XML::Parser")
	d := c.FindDistroByName("XML::Simple")
	deps := c.FormatDependencies([]catalog.Dependency{
		{Module: "XML::Parser", Version: "2.40"},
		{Module: "XML::Parser::Expat"},
		{Module: "Test::More", Version: "0.88", Phase: "test"},
	})
	rdeps := c.ReverseDependencies([]catalog.ReverseHit{{Distribution: "Config-Any"}})
	return c, d, deps, rdeps
}

func TestToDOT(t *testing.T) {
	_, d, deps, rdeps := fixture(t)
	dot := ToDOT(d, deps, rdeps, Options{})

	for _, want := range []string{
		`"XML::Simple" [fillcolor=gold`,
		`"XML::Simple" -> "XML::Parser" [label="runtime"];`,
		`"Config::Any" -> "XML::Simple";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Count(dot, `-> "XML::Parser"`) != 1 {
		t.Errorf("modules of one distribution were not collapsed:\n%s", dot)
	}
	if strings.Contains(dot, "Test::More") {
		t.Errorf("unresolved module drawn without Options.Unresolved:\n%s", dot)
	}
}

func TestToDOTOptions(t *testing.T) {
	_, d, deps, _ := fixture(t)

	dot := ToDOT(d, deps, nil, Options{Detailed: true, Unresolved: true})
	if !strings.Contains(dot, `"XML::Simple" -> "Test::More" [label="test 0.88", style=dashed];`) {
		t.Errorf("unresolved edge missing:\n%s", dot)
	}
	if !strings.Contains(dot, `label="runtime 2.40"`) {
		t.Errorf("version missing:\n%s", dot)
	}

	dot = ToDOT(d, deps, nil, Options{Phases: []string{"test"}, Unresolved: true})
	if strings.Contains(dot, "XML::Parser") {
		t.Errorf("phase filter ignored:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">`) {
		t.Errorf("normalized = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("svg without viewBox changed: %s", got)
	}
}

func TestRenderSVG(t *testing.T) {
	_, d, deps, rdeps := fixture(t)
	svg, err := RenderSVG(context.Background(), ToDOT(d, deps, rdeps, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") || !strings.Contains(string(svg), "XML::Parser") {
		t.Errorf("unexpected SVG output: %.200s", svg)
	}
}
