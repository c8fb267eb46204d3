package catalog

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	errs "github.com/matzehuels/cpanmap/pkg/errors"
	"github.com/matzehuels/cpanmap/pkg/mapdata"
	"github.com/matzehuels/cpanmap/pkg/observability"
)

// ctxCheckInterval is how many records are built between context checks.
const ctxCheckInterval = 4096

// LoadOptions configures catalog construction.
type LoadOptions struct {
	// Logger receives warnings about skipped records and cell collisions.
	// Defaults to log.Default().
	Logger *log.Logger
	// Strict fails the load on the first malformed record instead of
	// skipping it.
	Strict bool
	// Source names the input in logs and hooks (e.g. the file path).
	Source string
}

// LoadStats describes what a load consumed.
type LoadStats struct {
	Records    int           `json:"records" yaml:"records"`       // Data records dispatched to a section
	Ignored    int           `json:"ignored" yaml:"ignored"`       // Records outside any known section
	Malformed  int           `json:"malformed" yaml:"malformed"`   // Records skipped as malformed
	Collisions int           `json:"collisions" yaml:"collisions"` // Cells overwritten by a later record
	Duration   time.Duration `json:"duration" yaml:"duration"`
}

// LoadFile builds a catalog from the map data file at path.
func LoadFile(ctx context.Context, path string, opts LoadOptions) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "map data %s", path)
		}
		return nil, err
	}
	defer f.Close()
	if opts.Source == "" {
		opts.Source = path
	}
	return Load(ctx, f, opts)
}

// Load builds a catalog from map data in a single synchronous pass. The
// returned catalog is complete; nothing is visible to readers before Load
// returns.
func Load(ctx context.Context, r io.Reader, opts LoadOptions) (*Catalog, error) {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Source == "" {
		opts.Source = "<reader>"
	}

	start := time.Now()
	observability.Catalog().OnLoadStart(ctx, opts.Source)

	b := &builder{ctx: ctx, c: newCatalog(), opts: opts}
	err := b.run(mapdata.NewReader(r))
	b.c.Stats.Duration = time.Since(start)

	observability.Catalog().OnLoadComplete(ctx, opts.Source, len(b.c.Distributions), b.c.Stats.Duration, err)
	if err != nil {
		return nil, err
	}

	b.c.LoadID = uuid.NewString()
	opts.Logger.Info("loaded map data",
		"source", opts.Source,
		"load", b.c.LoadID,
		"distributions", len(b.c.Distributions),
		"maintainers", len(b.c.Maintainers),
		"namespaces", len(b.c.Namespaces),
		"malformed", b.c.Stats.Malformed,
		"collisions", b.c.Stats.Collisions,
		"duration", b.c.Stats.Duration.Round(time.Millisecond))
	return b.c, nil
}

// sectionHandler consumes one data record of a section.
type sectionHandler func(b *builder, line int, rec mapdata.Record) error

var sectionHandlers = map[mapdata.Section]sectionHandler{
	mapdata.SectionMeta:          (*builder).addMeta,
	mapdata.SectionMaintainers:   (*builder).addMaintainer,
	mapdata.SectionNamespaces:    (*builder).addNamespace,
	mapdata.SectionDistributions: (*builder).addDistribution,
}

type builder struct {
	ctx     context.Context
	c       *Catalog
	opts    LoadOptions
	section mapdata.Section
}

func (b *builder) run(r *mapdata.Reader) error {
	n := 0
	for line, rec := range r.All() {
		if n++; n%ctxCheckInterval == 0 {
			if err := b.ctx.Err(); err != nil {
				return err
			}
		}

		first := rec[0]
		if s, ok := mapdata.ParseMarker(first); ok {
			if s == mapdata.SectionNone {
				b.opts.Logger.Debug("ignoring unknown section", "marker", first, "line", line)
			}
			b.section = s
			continue
		}
		if mapdata.IsBrokenMarker(first) {
			return errs.New(errs.ErrCodeMalformedRecord, "line %d: malformed section marker %q", line, first)
		}
		if rec.Blank() {
			continue
		}

		handle, ok := sectionHandlers[b.section]
		if !ok {
			b.c.Stats.Ignored++
			continue
		}
		b.c.Stats.Records++
		if err := handle(b, line, rec); err != nil {
			if b.opts.Strict {
				return err
			}
			b.c.Stats.Malformed++
			b.opts.Logger.Warn("skipping malformed record", "section", b.section, "line", line, "err", errs.UserMessage(err))
			observability.Catalog().OnMalformedRecord(b.ctx, b.section.String(), line, err)
		}
	}
	if err := r.Err(); err != nil {
		return errs.Wrap(errs.ErrCodeMalformedRecord, err, "read map data")
	}
	return nil
}

func malformed(line int, format string, args ...any) error {
	return errs.New(errs.ErrCodeMalformedRecord, "line %d: %s", line, fmt.Sprintf(format, args...))
}

func (b *builder) addMeta(line int, rec mapdata.Record) error {
	if len(rec) < 2 || rec[0] == "" {
		return malformed(line, "meta record needs a key and a value")
	}
	key := rec[0]
	if len(rec) == 2 {
		b.c.Meta[key] = MetaValue{Value: rec[1]}
		return nil
	}
	values := append([]string(nil), rec[1:]...)
	b.c.Meta[key] = MetaValue{Value: values[0], Values: values}
	return nil
}

func (b *builder) addMaintainer(line int, rec mapdata.Record) error {
	id := rec[0]
	if id == "" {
		return malformed(line, "maintainer id is empty")
	}
	m := &Maintainer{
		ID:         id,
		Name:       rec.Field(1),
		GravatarID: rec.Field(2),
		Index:      len(b.c.Maintainers),
	}
	b.c.Maintainers = append(b.c.Maintainers, m)
	b.c.maintainerIndex[id] = m.Index
	return nil
}

func (b *builder) addNamespace(line int, rec mapdata.Record) error {
	if len(rec) < 3 || rec[0] == "" {
		return malformed(line, "namespace record needs name, colour and mass")
	}
	mass, err := mapdata.ParseHex(rec[2])
	if err != nil {
		return malformed(line, "namespace %s: bad mass %q", rec[0], rec[2])
	}
	b.c.Namespaces = append(b.c.Namespaces, &Namespace{
		Name:   rec[0],
		Colour: rec[1],
		Mass:   mass,
		Index:  len(b.c.Namespaces),
	})
	return nil
}

func (b *builder) addDistribution(line int, rec mapdata.Record) error {
	if len(rec) < 5 {
		return malformed(line, "distribution record needs 5 fields, got %d", len(rec))
	}
	name, mainModule, _ := strings.Cut(rec[0], "/")
	if name == "" {
		return malformed(line, "distribution name is empty")
	}

	var ns *Namespace
	if rec[1] != "" {
		i, err := mapdata.ParseHex(rec[1])
		if err != nil {
			return malformed(line, "%s: bad namespace index %q", name, rec[1])
		}
		if i < len(b.c.Namespaces) {
			ns = b.c.Namespaces[i]
		}
	}

	mi, err := mapdata.ParseHex(rec[2])
	if err != nil {
		return malformed(line, "%s: bad maintainer index %q", name, rec[2])
	}
	if mi >= len(b.c.Maintainers) {
		return malformed(line, "%s: maintainer index %d out of range", name, mi)
	}
	row, err := mapdata.ParseHex(rec[3])
	if err != nil {
		return malformed(line, "%s: bad row %q", name, rec[3])
	}
	col, err := mapdata.ParseHex(rec[4])
	if err != nil {
		return malformed(line, "%s: bad col %q", name, rec[4])
	}

	d := newDistribution(name, mainModule)
	d.Maintainer = b.c.Maintainers[mi]
	d.Namespace = ns
	d.Row, d.Col = row, col
	d.Index = len(b.c.Distributions)
	if len(rec) > 5 {
		d.Rating = b.parseRating(line, name, rec)
	}

	d.Maintainer.DistroCount++
	b.c.Distributions = append(b.c.Distributions, d)
	b.c.distroIndex[name] = d.Index
	if _, ok := b.c.lowerIndex[d.LowerName]; !ok {
		b.c.lowerIndex[d.LowerName] = d.Index
	}

	if prev, collided := b.c.spatial.set(row, col, d.Index); collided {
		b.c.Stats.Collisions++
		previous := b.c.Distributions[prev].Name
		b.opts.Logger.Warn("cell collision, later distribution wins",
			"row", row, "col", col, "previous", previous, "distribution", name, "line", line)
		observability.Catalog().OnCollision(b.ctx, row, col, previous, name)
	}
	return nil
}

// parseRating reads the optional score and count fields. An unreadable
// rating is dropped without rejecting the distribution.
func (b *builder) parseRating(line int, name string, rec mapdata.Record) *Rating {
	score, err := strconv.ParseFloat(rec[5], 64)
	if err != nil {
		b.opts.Logger.Warn("ignoring bad rating score", "distribution", name, "score", rec[5], "line", line)
		return nil
	}
	count := 0
	if s := rec.Field(6); s != "" {
		if count, err = strconv.Atoi(s); err != nil {
			b.opts.Logger.Warn("ignoring bad rating count", "distribution", name, "count", s, "line", line)
			return nil
		}
	}
	return newRating(score, count)
}
