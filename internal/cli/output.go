package cli

import (
	"encoding/json"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/cpanmap/pkg/errors"
)

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
	formatDOT  = "dot"
	formatSVG  = "svg"
)

func checkFormat(format string, allowed ...string) error {
	if slices.Contains(allowed, format) {
		return nil
	}
	return errs.New(errs.ErrCodeInvalidFormat, "unsupported format %q (want one of %v)", format, allowed)
}

// writeData encodes v as JSON or YAML.
func writeData(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return errs.New(errs.ErrCodeInvalidFormat, "format %q is not a data format", format)
}

// createFile opens path for writeFile.
var createFile = func(path string) (io.WriteCloser, error) { return os.Create(path) }

// writeFile creates path, fills it with write and reports a failed close,
// which is where a full disk usually surfaces.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := createFile(path)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidPath, err, "create %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}
