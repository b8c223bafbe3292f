package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/propgraph/internal/ir"
)

// errLoad marks failures to read a filter or pattern source.
var errLoad = errors.New("load failed")

// readSource returns the bytes of a filter or pattern given inline, as a
// file (file != ""), or on stdin (file == "-"), with the filename used for
// error positions.
func readSource(inline, file string, stdin io.Reader) ([]byte, string, error) {
	switch {
	case file == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("%w: reading stdin: %v", errLoad, err)
		}
		return data, "stdin", nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", errLoad, err)
		}
		return data, file, nil
	case inline != "":
		return []byte(inline), "", nil
	}
	return nil, "", nil
}

// LoadFilter reads a filter object from an inline JSON or YAML argument, or
// from a .json, .yaml, .yml or .cue file ("-" reads JSON or YAML from
// stdin). With neither, the filter is empty and selects everything.
//
// Member order is preserved. A CUE file must evaluate to a concrete
// object.
func LoadFilter(inline, file string, stdin io.Reader) (ir.Object, error) {
	data, name, err := readSource(inline, file, stdin)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return ir.Object{}, nil
	}

	if strings.EqualFold(filepath.Ext(name), ".cue") {
		v, err := ir.ParseCUE(data, name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errLoad, err)
		}
		obj, ok := v.(ir.Object)
		if !ok {
			return nil, fmt.Errorf("%w: %s: filter must be an object, got %s", errLoad, name, ir.KindOf(v))
		}
		return obj, nil
	}

	obj, err := ir.ParseObject(data)
	if err != nil {
		if name == "" {
			name = "filter"
		}
		return nil, fmt.Errorf("%w: %s: %v", errLoad, name, err)
	}
	return obj, nil
}

// LoadData reads a data object for node and edge commands. An empty
// argument yields an empty object.
func LoadData(inline string) (ir.Object, error) {
	if inline == "" {
		return ir.Object{}, nil
	}
	obj, err := ir.ParseObject([]byte(inline))
	if err != nil {
		return nil, fmt.Errorf("%w: data: %v", errLoad, err)
	}
	return obj, nil
}

// filterArg returns the optional inline filter argument.
func filterArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
