package catalog

import (
	"io"
	"slices"
	"strconv"

	"github.com/matzehuels/cpanmap/pkg/mapdata"
)

// Export writes c back in map data format. Reloading the output yields the
// same entities, indexes and cell assignments. Distributions that lost a
// cell collision are written too, in their original order, so the later
// one wins again on reload.
func (c *Catalog) Export(w io.Writer) error {
	mw := mapdata.NewWriter(w)

	if len(c.Meta) > 0 {
		if err := mw.WriteSection(mapdata.SectionMeta); err != nil {
			return err
		}
		keys := make([]string, 0, len(c.Meta))
		for k := range c.Meta {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if err := mw.Write(append(mapdata.Record{k}, c.Meta[k].Strings()...)); err != nil {
				return err
			}
		}
	}

	if err := mw.WriteSection(mapdata.SectionMaintainers); err != nil {
		return err
	}
	for _, m := range c.Maintainers {
		if err := mw.Write(trimTrailing(mapdata.Record{m.ID, m.Name, m.GravatarID})); err != nil {
			return err
		}
	}

	if len(c.Namespaces) > 0 {
		if err := mw.WriteSection(mapdata.SectionNamespaces); err != nil {
			return err
		}
		for _, ns := range c.Namespaces {
			if err := mw.Write(mapdata.Record{ns.Name, ns.Colour, mapdata.FormatHex(ns.Mass)}); err != nil {
				return err
			}
		}
	}

	if err := mw.WriteSection(mapdata.SectionDistributions); err != nil {
		return err
	}
	for _, d := range c.Distributions {
		if err := mw.Write(distributionRecord(d)); err != nil {
			return err
		}
	}
	return mw.Flush()
}

func distributionRecord(d *Distribution) mapdata.Record {
	name := d.Name
	if d.MainModule != "" {
		name += "/" + d.MainModule
	}
	ns := ""
	if d.Namespace != nil {
		ns = mapdata.FormatHex(d.Namespace.Index)
	}
	rec := mapdata.Record{
		name,
		ns,
		mapdata.FormatHex(d.Maintainer.Index),
		mapdata.FormatHex(d.Row),
		mapdata.FormatHex(d.Col),
	}
	if r := d.Rating; r != nil {
		rec = append(rec, strconv.FormatFloat(r.Score, 'f', -1, 64), strconv.Itoa(r.Count))
	}
	return rec
}

func trimTrailing(rec mapdata.Record) mapdata.Record {
	for len(rec) > 1 && rec[len(rec)-1] == "" {
		rec = rec[:len(rec)-1]
	}
	return rec
}
