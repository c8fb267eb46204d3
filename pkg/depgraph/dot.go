// Package depgraph draws the dependency neighbourhood of a distribution:
// the modules it depends on, grouped by the distributions that ship them,
// and the distributions that depend on it.
package depgraph

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/cpanmap/pkg/catalog"
)

// Options configures graph rendering.
type Options struct {
	// Detailed adds version constraints to dependency edges.
	Detailed bool
	// Phases limits dependencies to the listed phases. Empty means all.
	Phases []string
	// Unresolved includes modules that are not on the map.
	Unresolved bool
}

type edge struct {
	from, to string
	label    string
	dashed   bool
}

// ToDOT converts the reports of d to Graphviz DOT. Either report may be nil.
//
// Dependencies that resolve to the same distribution collapse into one
// node; reverse dependencies point at d.
func ToDOT(d *catalog.Distribution, deps *catalog.DependencyReport, rdeps *catalog.ReverseDependencyReport, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "  %q [fillcolor=gold, penwidth=2];\n", d.Name)

	var nodes []string
	seen := map[string]bool{d.Name: true}
	var edges []edge
	addNode := func(name string) {
		if !seen[name] {
			seen[name] = true
			nodes = append(nodes, name)
		}
	}

	if deps != nil {
		linked := make(map[string]bool)
		for _, g := range deps.Groups {
			if len(opts.Phases) > 0 && !slices.Contains(opts.Phases, g.Phase) {
				continue
			}
			for _, dep := range g.Deps {
				target := dep.Distro
				if !dep.Resolved() {
					if !opts.Unresolved {
						continue
					}
					target = dep.Module
				}
				if target == d.Name {
					continue
				}
				key := g.Phase + "\x00" + target
				if linked[key] {
					continue
				}
				linked[key] = true
				addNode(target)
				label := g.Phase
				if opts.Detailed && dep.Version != catalog.NoVersion {
					label += " " + dep.Version
				}
				edges = append(edges, edge{from: d.Name, to: target, label: label, dashed: !dep.Resolved()})
			}
		}
	}

	if rdeps != nil {
		for _, r := range rdeps.Entries {
			if r.Distro == d.Name {
				continue
			}
			addNode(r.Distro)
			edges = append(edges, edge{from: r.Distro, to: d.Name})
		}
	}

	for _, n := range nodes {
		fmt.Fprintf(&buf, "  %q;\n", n)
	}
	buf.WriteString("\n")
	for _, e := range edges {
		attrs := []string{}
		if e.label != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", e.label))
		}
		if e.dashed {
			attrs = append(attrs, "style=dashed")
		}
		if len(attrs) > 0 {
			fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.from, e.to, strings.Join(attrs, ", "))
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.from, e.to)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales with
// its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
