package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/cpanmap/pkg/buildinfo"
	"github.com/matzehuels/cpanmap/pkg/catalog"
	"github.com/matzehuels/cpanmap/pkg/depgraph"
	"github.com/matzehuels/cpanmap/pkg/enrich"
	errs "github.com/matzehuels/cpanmap/pkg/errors"
)

type metaResponse struct {
	LoadID     string         `json:"load_id"`
	Meta       map[string]any `json:"meta"`
	Rows       int            `json:"rows"`
	Cols       int            `json:"cols"`
	ZoomScales []int          `json:"zoom_scales"`
}

type statsResponse struct {
	LoadID string `json:"load_id"`
	catalog.Summary
	Records    int     `json:"records"`
	Ignored    int     `json:"ignored"`
	Malformed  int     `json:"malformed"`
	Collisions int     `json:"collisions"`
	LoadTimeMS float64 `json:"load_time_ms"`
}

type cellResponse struct {
	Row          int                       `json:"row"`
	Col          int                       `json:"col"`
	Distribution *catalog.DistributionView `json:"distribution"`
}

type searchResponse struct {
	Query   string                     `json:"query"`
	Results []catalog.DistributionView `json:"results"`
}

type depsResponse struct {
	Distribution string `json:"distribution"`
	*catalog.DependencyReport
}

type rdepsResponse struct {
	Distribution string `json:"distribution"`
	*catalog.ReverseDependencyReport
}

type moduleResponse struct {
	Module       string                    `json:"module"`
	Distribution *catalog.DistributionView `json:"distribution"`
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	c := s.Catalog()
	rows, cols := c.PlaneSize()
	writeJSON(w, http.StatusOK, metaResponse{
		LoadID:     c.LoadID,
		Meta:       c.MetaMap(),
		Rows:       rows,
		Cols:       cols,
		ZoomScales: c.ZoomScales(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	c := s.Catalog()
	writeJSON(w, http.StatusOK, statsResponse{
		LoadID:     c.LoadID,
		Summary:    c.Summary(),
		Records:    c.Stats.Records,
		Ignored:    c.Stats.Ignored,
		Malformed:  c.Stats.Malformed,
		Collisions: c.Stats.Collisions,
		LoadTimeMS: float64(c.Stats.Duration.Microseconds()) / 1000,
	})
}

// handleCell answers with a null distribution for an empty cell; an empty
// cell is not an error.
func (s *Server) handleCell(w http.ResponseWriter, r *http.Request) {
	row, err := errs.ParseCoordinate(chi.URLParam(r, "row"))
	if err != nil {
		writeError(w, err)
		return
	}
	col, err := errs.ParseCoordinate(chi.URLParam(r, "col"))
	if err != nil {
		writeError(w, err)
		return
	}
	c := s.Catalog()
	resp := cellResponse{Row: row, Col: col}
	if d := c.At(row, col); d != nil {
		v := c.ViewDistribution(d)
		resp.Distribution = &v
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, errs.New(errs.ErrCodeInvalidInput, "query parameter q is required"))
		return
	}
	limit := DefaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxSearchLimit {
			writeError(w, errs.New(errs.ErrCodeInvalidInput, "limit must be between 1 and %d", MaxSearchLimit))
			return
		}
		limit = n
	}
	c := s.Catalog()
	writeJSON(w, http.StatusOK, searchResponse{
		Query:   q,
		Results: c.ViewDistributions(c.SearchPrefix(q, limit)),
	})
}

func (s *Server) handleDistro(w http.ResponseWriter, r *http.Request) {
	snap := s.current.Load()
	c := snap.catalog
	d, err := findDistro(c, chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	if r.URL.Query().Get("detail") != "" {
		e, err := snap.requireEnricher()
		if err != nil {
			writeError(w, err)
			return
		}
		if _, err := e.ReleaseDetail(r.Context(), d); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, c.ViewDistribution(d))
}

func (s *Server) handleDeps(w http.ResponseWriter, r *http.Request) {
	d, e, ok := s.distroAndEnricher(w, r)
	if !ok {
		return
	}
	report, err := e.Dependencies(r.Context(), d)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, depsResponse{Distribution: d.Name, DependencyReport: report})
}

func (s *Server) handleRDeps(w http.ResponseWriter, r *http.Request) {
	d, e, ok := s.distroAndEnricher(w, r)
	if !ok {
		return
	}
	report, err := e.ReverseDependencies(r.Context(), d)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rdepsResponse{Distribution: d.Name, ReverseDependencyReport: report})
}

// handleGraph renders the dependency neighbourhood as DOT or SVG.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "svg"
	}
	if format != "svg" && format != "dot" {
		writeError(w, errs.New(errs.ErrCodeInvalidFormat, "unsupported graph format %q", format))
		return
	}
	d, e, ok := s.distroAndEnricher(w, r)
	if !ok {
		return
	}
	deps, err := e.Dependencies(r.Context(), d)
	if err != nil {
		writeError(w, err)
		return
	}
	var rdeps *catalog.ReverseDependencyReport
	if r.URL.Query().Get("rdeps") != "" {
		if rdeps, err = e.ReverseDependencies(r.Context(), d); err != nil {
			writeError(w, err)
			return
		}
	}

	dot := depgraph.ToDOT(d, deps, rdeps, depgraph.Options{})
	if format == "dot" {
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(dot))
		return
	}
	svg, err := depgraph.RenderSVG(r.Context(), dot)
	if err != nil {
		writeError(w, errs.Wrap(errs.ErrCodeInternal, err, "render graph"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	d, e, ok := s.distroAndEnricher(w, r)
	if !ok {
		return
	}
	content, err := e.File(r.Context(), d, chi.URLParam(r, "file"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(content))
}

func (s *Server) handleMaintainer(w http.ResponseWriter, r *http.Request) {
	snap := s.current.Load()
	c := snap.catalog
	id := chi.URLParam(r, "id")
	m := c.FindMaintainerByID(id)
	if m == nil {
		if err := errs.ValidateMaintainerID(id); err != nil {
			writeError(w, err)
			return
		}
		writeError(w, errs.New(errs.ErrCodeMaintainerNotFound, "maintainer %q is not on the map", id))
		return
	}
	if r.URL.Query().Get("detail") != "" {
		e, err := snap.requireEnricher()
		if err != nil {
			writeError(w, err)
			return
		}
		if _, err := e.AuthorDetail(r.Context(), m); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, c.ViewMaintainer(m))
}

// handleModule resolves from the catalog first and only asks the registry
// when the module is not known locally.
func (s *Server) handleModule(w http.ResponseWriter, r *http.Request) {
	snap := s.current.Load()
	c := snap.catalog
	module := strings.TrimSpace(chi.URLParam(r, "module"))
	if err := errs.ValidateModuleName(module); err != nil {
		writeError(w, err)
		return
	}
	d := c.ResolveModule(module)
	if d == nil {
		if e := snap.enricher; e != nil {
			var err error
			if d, err = e.ResolveModule(r.Context(), module); err != nil {
				writeError(w, err)
				return
			}
		}
	}
	if d == nil {
		writeError(w, errs.New(errs.ErrCodeNotFound, "module %q does not resolve to a distribution on the map", module))
		return
	}
	v := c.ViewDistribution(d)
	writeJSON(w, http.StatusOK, moduleResponse{Module: module, Distribution: &v})
}

func (snap *snapshot) requireEnricher() (*enrich.Enricher, error) {
	if snap.enricher == nil {
		return nil, errs.New(errs.ErrCodeUnsupported, "no registry configured")
	}
	return snap.enricher, nil
}

func (s *Server) distroAndEnricher(w http.ResponseWriter, r *http.Request) (*catalog.Distribution, *enrich.Enricher, bool) {
	snap := s.current.Load()
	d, err := findDistro(snap.catalog, chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return nil, nil, false
	}
	e, err := snap.requireEnricher()
	if err != nil {
		writeError(w, err)
		return nil, nil, false
	}
	return d, e, true
}

// findDistro accepts catalog ("Foo::Bar") and registry ("Foo-Bar") names.
func findDistro(c *catalog.Catalog, name string) (*catalog.Distribution, error) {
	name = strings.TrimSpace(name)
	if err := errs.ValidateName(name); err != nil {
		return nil, err
	}
	if d := c.FindDistroByName(name); d != nil {
		return d, nil
	}
	if d := c.FindDistroByName(catalog.DistroNameFromRelease(name)); d != nil {
		return d, nil
	}
	return nil, errs.New(errs.ErrCodeDistroNotFound, "distribution %q is not on the map", name)
}
