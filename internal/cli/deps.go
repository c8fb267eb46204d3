package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cpanmap/pkg/catalog"
	"github.com/matzehuels/cpanmap/pkg/depgraph"
	errs "github.com/matzehuels/cpanmap/pkg/errors"
)

// depsReport is the machine-readable result of `cpanmap deps`.
type depsReport struct {
	Distribution             string `json:"distribution" yaml:"distribution"`
	Release                  string `json:"release,omitempty" yaml:"release,omitempty"`
	catalog.DependencyReport `yaml:",inline"`
}

// rdepsReport is the machine-readable result of `cpanmap rdeps`.
type rdepsReport struct {
	Distribution                    string `json:"distribution" yaml:"distribution"`
	catalog.ReverseDependencyReport `yaml:",inline"`
}

type depsOpts struct {
	format     string
	output     string
	phases     []string
	detailed   bool
	unresolved bool
	withRDeps  bool
}

func (c *CLI) depsCommand() *cobra.Command {
	var opts depsOpts
	cmd := &cobra.Command{
		Use:               "deps <file> <distribution>",
		ValidArgsFunction: c.completeDistroNames,
		Short:             "Show the dependencies of a distribution",
		Long: `Show the dependencies of a distribution's latest release, grouped by phase.
Modules are linked to the distributions on the map that ship them.

The dot and svg formats draw the dependency neighbourhood; --rdeps adds the
distributions that depend on it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDeps(cmd, args[0], args[1], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatText, "output format (text, json, yaml, dot, svg)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringSliceVar(&opts.phases, "phase", nil, "graph only these phases (dot, svg)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label graph edges with versions (dot, svg)")
	cmd.Flags().BoolVar(&opts.unresolved, "unresolved", false, "draw modules that are not on the map (dot, svg)")
	cmd.Flags().BoolVar(&opts.withRDeps, "rdeps", false, "include reverse dependencies in the graph (dot, svg)")
	return cmd
}

func (c *CLI) runDeps(cmd *cobra.Command, file, name string, opts depsOpts) error {
	if err := checkFormat(opts.format, formatText, formatJSON, formatYAML, formatDOT, formatSVG); err != nil {
		return err
	}
	ctx := cmd.Context()
	cat, err := c.loadCatalog(ctx, file)
	if err != nil {
		return err
	}
	d := findDistro(cat, name)
	if d == nil {
		return errs.New(errs.ErrCodeDistroNotFound, "distribution %q is not on the map", name)
	}
	e, closeFn, err := c.newEnricher(ctx, cat)
	if err != nil {
		return err
	}
	defer closeFn()

	var report *catalog.DependencyReport
	err = spin(ctx, cmd.ErrOrStderr(), "Fetching dependencies of "+d.DisplayName, func() error {
		report, err = e.Dependencies(ctx, d)
		return err
	})
	if err != nil {
		return err
	}

	var rdeps *catalog.ReverseDependencyReport
	graph := opts.format == formatDOT || opts.format == formatSVG
	if graph && opts.withRDeps {
		err = spin(ctx, cmd.ErrOrStderr(), "Fetching reverse dependencies of "+d.DisplayName, func() error {
			rdeps, err = e.ReverseDependencies(ctx, d)
			return err
		})
		if err != nil {
			return err
		}
	}

	if opts.output == "" {
		return writeDeps(ctx, cmd.OutOrStdout(), d, report, rdeps, opts)
	}
	err = writeFile(opts.output, func(w io.Writer) error {
		return writeDeps(ctx, w, d, report, rdeps, opts)
	})
	if err != nil {
		return err
	}
	printFile(cmd.ErrOrStderr(), opts.output)
	return nil
}

func writeDeps(ctx context.Context, out io.Writer, d *catalog.Distribution, report *catalog.DependencyReport,
	rdeps *catalog.ReverseDependencyReport, opts depsOpts) error {
	switch opts.format {
	case formatText:
		renderDependencies(out, d, report)
	case formatJSON, formatYAML:
		r := depsReport{Distribution: d.Name, DependencyReport: *report}
		if detail, ok := d.Release.Get(); ok {
			r.Release = detail.Name
		}
		if err := writeData(out, opts.format, r); err != nil {
			return err
		}
	case formatDOT, formatSVG:
		dot := depgraph.ToDOT(d, report, rdeps, depgraph.Options{
			Detailed:   opts.detailed,
			Phases:     opts.phases,
			Unresolved: opts.unresolved,
		})
		data := []byte(dot)
		if opts.format == formatSVG {
			var err error
			if data, err = depgraph.RenderSVG(ctx, dot); err != nil {
				return err
			}
		}
		if _, err := out.Write(data); err != nil {
			return err
		}
	}
	return nil
}

func (c *CLI) rdepsCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:               "rdeps <file> <distribution>",
		ValidArgsFunction: c.completeDistroNames,
		Short:             "Show the distributions on the map that depend on a distribution",
		Args:              cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatText, formatJSON, formatYAML); err != nil {
				return err
			}
			ctx := cmd.Context()
			cat, err := c.loadCatalog(ctx, args[0])
			if err != nil {
				return err
			}
			d := findDistro(cat, args[1])
			if d == nil {
				return errs.New(errs.ErrCodeDistroNotFound, "distribution %q is not on the map", args[1])
			}
			e, closeFn, err := c.newEnricher(ctx, cat)
			if err != nil {
				return err
			}
			defer closeFn()

			var report *catalog.ReverseDependencyReport
			err = spin(ctx, cmd.ErrOrStderr(), "Fetching reverse dependencies of "+d.DisplayName, func() error {
				report, err = e.ReverseDependencies(ctx, d)
				return err
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format != formatText {
				return writeData(out, format, rdepsReport{Distribution: d.Name, ReverseDependencyReport: *report})
			}
			renderReverseDependencies(out, d, report)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format (text, json, yaml)")
	return cmd
}
