package catalog

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

const sampleMap = `[META]
map_date,2011-03-04
plane_rows,4
plane_cols,6
zoom_scales,3,5,8
avatar_url_template,https://www.gravatar.com/avatar/%ID%?s=80
[MAINTAINERS]
GRANTM,Grant McLean,abc123
MIYAGAWA
[NAMESPACES]
XML,3,1f
Plack,7,a
[DISTRIBUTIONS]
XML::Simple,0,0,1,2,4.5,12
Plack/Plack::Request,1,1,2,3
XML::Parser,0,1,0,0
Foo-Bar,,0,3,5,junk
`

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func loadString(t *testing.T, data string) *Catalog {
	t.Helper()
	c, err := Load(context.Background(), strings.NewReader(data), LoadOptions{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return c
}
