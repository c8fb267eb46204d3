package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cpanmap/pkg/catalog"
	errs "github.com/matzehuels/cpanmap/pkg/errors"
)

const defaultFindLimit = 25

// loadReport is the machine-readable result of `cpanmap load`.
type loadReport struct {
	File    string            `json:"file" yaml:"file"`
	LoadID  string            `json:"load_id" yaml:"load_id"`
	Summary catalog.Summary   `json:"summary" yaml:"summary"`
	Stats   catalog.LoadStats `json:"stats" yaml:"stats"`
}

func (c *CLI) loadCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "load <file>",
		Short: "Load a map data file and report what it contains",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatText, formatJSON, formatYAML); err != nil {
				return err
			}
			cat, err := c.loadCatalog(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if format != formatText {
				return writeData(out, format, loadReport{
					File:    args[0],
					LoadID:  cat.LoadID,
					Summary: cat.Summary(),
					Stats:   cat.Stats,
				})
			}

			s := cat.Summary()
			printSuccess(out, "Loaded %s", args[0])
			printKeyValue(out, "Distributions", strconv.Itoa(s.Distributions))
			printKeyValue(out, "Maintainers", strconv.Itoa(s.Maintainers))
			printKeyValue(out, "Namespaces", strconv.Itoa(s.Namespaces))
			printKeyValue(out, "Plane", fmt.Sprintf("%d x %d (%d cells occupied)", s.Rows, s.Cols, s.Cells))
			if date, ok := cat.MetaString("map_date"); ok {
				printKeyValue(out, "Map date", date)
			}
			printStats(out, cat.Stats)
			if cat.Stats.Malformed > 0 {
				printWarning(out, "%d malformed records skipped (run with -v for details)", cat.Stats.Malformed)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format (text, json, yaml)")
	return cmd
}

func (c *CLI) atCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "at <file> <row> <col>",
		Short: "Show the distribution on a grid cell",
		Long:  "Show the distribution on a grid cell. Coordinates are decimal, or hexadecimal with a 0x prefix.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatText, formatJSON, formatYAML); err != nil {
				return err
			}
			row, err := errs.ParseCoordinate(args[1])
			if err != nil {
				return err
			}
			col, err := errs.ParseCoordinate(args[2])
			if err != nil {
				return err
			}
			cat, err := c.loadCatalog(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			d := cat.At(row, col)
			if format != formatText {
				var v *catalog.DistributionView
				if d != nil {
					view := cat.ViewDistribution(d)
					v = &view
				}
				return writeData(out, format, v)
			}
			if d == nil {
				printInfo(out, "Cell %s is empty", formatCell(row, col))
				return nil
			}
			renderDistribution(out, cat, d)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format (text, json, yaml)")
	return cmd
}

func (c *CLI) findCommand() *cobra.Command {
	var (
		format string
		prefix bool
		pick   bool
		limit  int
	)
	cmd := &cobra.Command{
		Use:               "find <file> [name]",
		ValidArgsFunction: c.completeDistroNames,
		Short:             "Find a distribution by name",
		Long: `Find a distribution by name. The exact name wins; otherwise the first
case-insensitive match is shown. Registry names ("XML-Simple") are accepted.

With --prefix, list the distributions whose name starts with the given text.
With --pick, choose interactively.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatText, formatJSON, formatYAML); err != nil {
				return err
			}
			name := ""
			if len(args) == 2 {
				name = args[1]
			}
			if name == "" && !pick {
				return errs.New(errs.ErrCodeInvalidName, "a name is required unless --pick is set")
			}
			cat, err := c.loadCatalog(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch {
			case pick:
				d, err := pickDistribution(cat.Distributions, name)
				if err != nil || d == nil {
					return err
				}
				return showDistribution(out, format, cat, d)
			case prefix:
				ds := cat.SearchPrefix(name, limit)
				if format != formatText {
					return writeData(out, format, cat.ViewDistributions(ds))
				}
				if len(ds) == 0 {
					printInfo(out, "No distribution starts with %q", name)
					return nil
				}
				renderDistributionList(out, cat, ds)
				return nil
			}

			d := findDistro(cat, name)
			if d == nil {
				return errs.New(errs.ErrCodeDistroNotFound, "distribution %q is not on the map", name)
			}
			return showDistribution(out, format, cat, d)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format (text, json, yaml)")
	cmd.Flags().BoolVar(&prefix, "prefix", false, "list distributions starting with name")
	cmd.Flags().BoolVar(&pick, "pick", false, "pick a distribution interactively")
	cmd.Flags().IntVar(&limit, "limit", defaultFindLimit, "maximum results with --prefix (0 for all)")
	return cmd
}

func (c *CLI) maintainerCommand() *cobra.Command {
	var (
		format string
		detail bool
	)
	cmd := &cobra.Command{
		Use:   "maintainer <file> <id>",
		Short: "Show a maintainer by registry id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatText, formatJSON, formatYAML); err != nil {
				return err
			}
			cat, err := c.loadCatalog(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			m := cat.FindMaintainerByID(args[1])
			if m == nil {
				m = cat.FindMaintainerByID(strings.ToUpper(args[1]))
			}
			if m == nil {
				return errs.New(errs.ErrCodeMaintainerNotFound, "maintainer %q is not on the map", args[1])
			}

			out := cmd.OutOrStdout()
			if detail {
				e, closeFn, err := c.newEnricher(cmd.Context(), cat)
				if err != nil {
					return err
				}
				defer closeFn()
				err = spin(cmd.Context(), cmd.ErrOrStderr(), "Fetching author "+m.ID, func() error {
					_, err := e.AuthorDetail(cmd.Context(), m)
					return err
				})
				if err != nil {
					return err
				}
			}
			if format != formatText {
				return writeData(out, format, cat.ViewMaintainer(m))
			}
			renderMaintainer(out, cat, m)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format (text, json, yaml)")
	cmd.Flags().BoolVar(&detail, "detail", false, "fetch the author profile from the registry")
	return cmd
}

func (c *CLI) moduleCommand() *cobra.Command {
	var (
		format  string
		offline bool
	)
	cmd := &cobra.Command{
		Use:   "module <file> <module>",
		Short: "Find the distribution that ships a module",
		Long: `Find the distribution that ships a module. The catalog is consulted
first; unless --offline is set, the registry is asked for modules the
catalog cannot resolve.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatText, formatJSON, formatYAML); err != nil {
				return err
			}
			cat, err := c.loadCatalog(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			module := args[1]
			d := cat.ResolveModule(module)
			if d == nil && !offline {
				e, closeFn, err := c.newEnricher(cmd.Context(), cat)
				if err != nil {
					return err
				}
				defer closeFn()
				err = spin(cmd.Context(), cmd.ErrOrStderr(), "Resolving "+module, func() error {
					d, err = e.ResolveModule(cmd.Context(), module)
					return err
				})
				if err != nil {
					return err
				}
			}
			if d == nil {
				return errs.New(errs.ErrCodeNotFound, "module %q does not resolve to a distribution on the map", module)
			}
			return showDistribution(cmd.OutOrStdout(), format, cat, d)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format (text, json, yaml)")
	cmd.Flags().BoolVar(&offline, "offline", false, "never ask the registry")
	return cmd
}

func (c *CLI) exportCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Re-encode a map data file from the parsed catalog",
		Long: `Re-encode a map data file from the parsed catalog. Malformed records are
dropped and the output is normalized; loading it yields the same catalog.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog := newProgress(c.Logger)
			cat, err := c.loadCatalog(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				return cat.Export(cmd.OutOrStdout())
			}

			if err := writeFile(output, cat.Export); err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Exported %d distributions", len(cat.Distributions)))
			printFile(cmd.ErrOrStderr(), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

func showDistribution(w io.Writer, format string, cat *catalog.Catalog, d *catalog.Distribution) error {
	if format != formatText {
		return writeData(w, format, cat.ViewDistribution(d))
	}
	renderDistribution(w, cat, d)
	return nil
}

// findDistro accepts catalog ("Foo::Bar") and registry ("Foo-Bar") names.
func findDistro(cat *catalog.Catalog, name string) *catalog.Distribution {
	if d := cat.FindDistroByName(name); d != nil {
		return d
	}
	return cat.FindDistroByName(catalog.DistroNameFromRelease(name))
}
