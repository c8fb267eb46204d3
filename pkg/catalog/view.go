package catalog

// Flat, serializable views of catalog entities for JSON and YAML output.
// Cross references are rendered as ids and names rather than pointers.

// MaintainerRef identifies a maintainer inside another view.
type MaintainerRef struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// NamespaceView is the serializable form of a Namespace.
type NamespaceView struct {
	Name   string `json:"name" yaml:"name"`
	Colour string `json:"colour" yaml:"colour"`
	Mass   int    `json:"mass" yaml:"mass"`
}

// RatingView is the serializable form of a Rating.
type RatingView struct {
	Score float64 `json:"score" yaml:"score"`
	Count int     `json:"count" yaml:"count"`
	Stars int     `json:"stars" yaml:"stars"`
}

// DistributionView is the serializable form of a Distribution.
type DistributionView struct {
	Index       int            `json:"index" yaml:"index"`
	Name        string         `json:"name" yaml:"name"`
	DisplayName string         `json:"display_name" yaml:"display_name"`
	DocModule   string         `json:"doc_module" yaml:"doc_module"`
	Maintainer  MaintainerRef  `json:"maintainer" yaml:"maintainer"`
	Namespace   *NamespaceView `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Row         int            `json:"row" yaml:"row"`
	Col         int            `json:"col" yaml:"col"`
	ColourClass string         `json:"colour_class" yaml:"colour_class"`
	Rating      *RatingView    `json:"rating,omitempty" yaml:"rating,omitempty"`
	ReleaseDate string         `json:"release_date,omitempty" yaml:"release_date,omitempty"`
}

// MaintainerView is the serializable form of a Maintainer.
type MaintainerView struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	GravatarID  string        `json:"gravatar_id,omitempty" yaml:"gravatar_id,omitempty"`
	AvatarURL   string        `json:"avatar_url,omitempty" yaml:"avatar_url,omitempty"`
	DistroCount int           `json:"distro_count" yaml:"distro_count"`
	Detail      *AuthorDetail `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// ViewDistribution flattens d.
func (c *Catalog) ViewDistribution(d *Distribution) DistributionView {
	v := DistributionView{
		Index:       d.Index,
		Name:        d.Name,
		DisplayName: d.DisplayName,
		DocModule:   d.DocModule(),
		Maintainer:  MaintainerRef{ID: d.Maintainer.ID, Name: d.Maintainer.DisplayName()},
		Row:         d.Row,
		Col:         d.Col,
		ColourClass: c.ColourClass(d),
		ReleaseDate: d.ReleaseDate(),
	}
	if ns := d.Namespace; ns != nil {
		v.Namespace = &NamespaceView{Name: ns.Name, Colour: ns.Colour, Mass: ns.Mass}
	}
	if r := d.Rating; r != nil {
		v.Rating = &RatingView{Score: r.Score, Count: r.Count, Stars: r.Stars}
	}
	return v
}

// ViewDistributions flattens ds. The result is never nil.
func (c *Catalog) ViewDistributions(ds []*Distribution) []DistributionView {
	out := make([]DistributionView, 0, len(ds))
	for _, d := range ds {
		out = append(out, c.ViewDistribution(d))
	}
	return out
}

// ViewMaintainer flattens m. The registry detail is included once fetched.
func (c *Catalog) ViewMaintainer(m *Maintainer) MaintainerView {
	v := MaintainerView{
		ID:          m.ID,
		Name:        m.DisplayName(),
		GravatarID:  m.GravatarID,
		AvatarURL:   c.AvatarURL(m),
		DistroCount: m.DistroCount,
	}
	if detail, ok := m.Detail.Get(); ok {
		v.Detail = detail
	}
	return v
}

// MetaMap returns META as plain values: strings for scalars and string
// slices for lists.
func (c *Catalog) MetaMap() map[string]any {
	out := make(map[string]any, len(c.Meta))
	for k, v := range c.Meta {
		if v.IsList() {
			out[k] = v.Values
		} else {
			out[k] = v.Value
		}
	}
	return out
}
