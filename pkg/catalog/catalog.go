package catalog

import (
	"slices"
	"strconv"
	"strings"
	"sync"
)

// Meta keys understood by the catalog.
const (
	MetaPlaneRows         = "plane_rows"
	MetaPlaneCols         = "plane_cols"
	MetaZoomScales        = "zoom_scales"
	MetaAvatarURLTemplate = "avatar_url_template"
)

// DefaultZoomScales are the cell sizes offered when the data file does not
// list its own.
var DefaultZoomScales = []int{2, 3, 4, 5, 6, 8, 10}

// Catalog is the indexed map data of one load.
type Catalog struct {
	LoadID        string // Unique id of the load that built this catalog
	Meta          map[string]MetaValue
	Maintainers   []*Maintainer
	Namespaces    []*Namespace
	Distributions []*Distribution
	Stats         LoadStats

	maintainerIndex map[string]int
	distroIndex     map[string]int
	lowerIndex      map[string]int
	spatial         SpatialIndex

	modulesMu sync.RWMutex
	modules   map[string]string
}

func newCatalog() *Catalog {
	return &Catalog{
		Meta:            make(map[string]MetaValue),
		maintainerIndex: make(map[string]int),
		distroIndex:     make(map[string]int),
		lowerIndex:      make(map[string]int),
		spatial:         newSpatialIndex(),
		modules:         make(map[string]string),
	}
}

// Spatial returns the row/column index.
func (c *Catalog) Spatial() SpatialIndex { return c.spatial }

// At returns the distribution at (row, col), or nil if the cell is empty.
func (c *Catalog) At(row, col int) *Distribution {
	i, ok := c.spatial.Lookup(row, col)
	if !ok {
		return nil
	}
	return c.Distributions[i]
}

// Distribution returns the distribution with the given index, or nil.
func (c *Catalog) Distribution(index int) *Distribution {
	if index < 0 || index >= len(c.Distributions) {
		return nil
	}
	return c.Distributions[index]
}

// MetaString returns a scalar META value.
func (c *Catalog) MetaString(key string) (string, bool) {
	v, ok := c.Meta[key]
	if !ok {
		return "", false
	}
	return v.Value, true
}

// ColourClass returns the renderer class of a distribution's cell:
// "c" followed by the namespace colour, or "c0" without a namespace.
func (c *Catalog) ColourClass(d *Distribution) string {
	if d == nil || d.Namespace == nil || d.Namespace.Colour == "" {
		return "c0"
	}
	return "c" + d.Namespace.Colour
}

// PlaneSize returns the grid dimensions. Declared META values win; otherwise
// the size is derived from the occupied cells.
func (c *Catalog) PlaneSize() (rows, cols int) {
	maxRow, maxCol := c.spatial.bounds()
	rows, cols = maxRow+1, maxCol+1
	if v, ok := c.MetaString(MetaPlaneRows); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			rows = n
		}
	}
	if v, ok := c.MetaString(MetaPlaneCols); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cols = n
		}
	}
	return rows, cols
}

// ZoomScales returns the cell sizes listed in META, or DefaultZoomScales.
// Entries that are not positive integers are skipped.
func (c *Catalog) ZoomScales() []int {
	v, ok := c.Meta[MetaZoomScales]
	if !ok {
		return slices.Clone(DefaultZoomScales)
	}
	var scales []int
	for _, s := range v.Strings() {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			scales = append(scales, n)
		}
	}
	if len(scales) == 0 {
		return slices.Clone(DefaultZoomScales)
	}
	return scales
}

// AvatarURL expands the META avatar template for m. It returns "" when the
// template or the maintainer's gravatar id is missing.
func (c *Catalog) AvatarURL(m *Maintainer) string {
	tmpl, ok := c.MetaString(MetaAvatarURLTemplate)
	if !ok || m == nil || m.GravatarID == "" {
		return ""
	}
	return strings.ReplaceAll(tmpl, "%ID%", m.GravatarID)
}

// SearchPrefix returns up to limit distributions whose lowercase name starts
// with prefix, in catalog order. A limit of 0 or less means no limit.
func (c *Catalog) SearchPrefix(prefix string, limit int) []*Distribution {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil
	}
	var out []*Distribution
	for _, d := range c.Distributions {
		if strings.HasPrefix(d.LowerName, prefix) {
			out = append(out, d)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}

// Summary counts the catalog's entities.
type Summary struct {
	Maintainers   int `json:"maintainers" yaml:"maintainers"`
	Namespaces    int `json:"namespaces" yaml:"namespaces"`
	Distributions int `json:"distributions" yaml:"distributions"`
	Cells         int `json:"cells" yaml:"cells"`
	Rows          int `json:"rows" yaml:"rows"`
	Cols          int `json:"cols" yaml:"cols"`
}

// Summary returns entity counts and plane dimensions.
func (c *Catalog) Summary() Summary {
	rows, cols := c.PlaneSize()
	return Summary{
		Maintainers:   len(c.Maintainers),
		Namespaces:    len(c.Namespaces),
		Distributions: len(c.Distributions),
		Cells:         c.spatial.Cells(),
		Rows:          rows,
		Cols:          cols,
	}
}
