package metacpan

import (
	"bytes"
	"encoding/json"
	"strings"
)

type releaseResponse struct {
	Name         string     `json:"name"`
	Distribution string     `json:"distribution"`
	Version      flexString `json:"version"`
	Abstract     string     `json:"abstract"`
	Author       string     `json:"author"`
	Date         string     `json:"date"`
	License      []string   `json:"license"`
	Resources    struct {
		Homepage   string `json:"homepage"`
		Repository struct {
			URL string `json:"url"`
			Web string `json:"web"`
		} `json:"repository"`
		BugTracker struct {
			Web    string `json:"web"`
			Mailto string `json:"mailto"`
		} `json:"bugtracker"`
	} `json:"resources"`
	Dependency []dependencyResponse `json:"dependency"`
}

type dependencyResponse struct {
	Module       string     `json:"module"`
	Version      flexString `json:"version"`
	Phase        string     `json:"phase"`
	Relationship string     `json:"relationship"`
}

type authorResponse struct {
	PauseID     string     `json:"pauseid"`
	Name        flexString `json:"name"`
	City        string     `json:"city"`
	Country     string     `json:"country"`
	GravatarURL string     `json:"gravatar_url"`
	Profile     []struct {
		Name string `json:"name"`
		ID   string `json:"id"`
	} `json:"profile"`
}

type moduleResponse struct {
	Distribution string `json:"distribution"`
	Author       string `json:"author"`
	Release      string `json:"release"`
}

type reverseResponse struct {
	Data []struct {
		Distribution string `json:"distribution"`
		Author       string `json:"author"`
		Date         string `json:"date"`
	} `json:"data"`
	Total int `json:"total"`
}

// flexString decodes fields that MetaCPAN reports either as a string, a
// number, a list of strings or null.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*s = ""
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
	case data[0] == '[':
		var v []string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(strings.Join(v, ", "))
	default:
		*s = flexString(data)
	}
	return nil
}

func (s flexString) String() string { return string(s) }
