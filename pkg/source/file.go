package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/selecttree/pkg/errors"
)

// Supported document formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// itemsKey wraps the rows when the document root must be an object (always for TOML).
const itemsKey = "items"

// File reads rows from a JSON, YAML or TOML document.
//
// The document is either a list of rows or an object whose "items" key holds
// the list. TOML documents always use the second form:
//
//	[[items]]
//	id = 1
//	name = "Phone"
//
//	[[items]]
//	id = 2
//	name = "iPhone"
//	parent_id = 1
//
// TOML has no null; omit parent_id from a TOML row to make it a root.
type File struct {
	Path string
	// Format overrides detection from the file extension.
	Format string
}

// NewFile creates a file source with the format detected from the extension.
func NewFile(path string) *File {
	return &File{Path: path}
}

// Name returns the file path.
func (f *File) Name() string { return "file:" + f.Path }

// Version returns the file's size and modification time.
func (f *File) Version(ctx context.Context) (string, error) {
	info, err := os.Stat(f.Path)
	if os.IsNotExist(err) {
		return "", errs.Wrap(errs.ErrCodeFileNotFound, err, "stat %s", f.Path)
	}
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", f.Path, err)
	}
	return fmt.Sprintf("%d-%d", info.Size(), info.ModTime().UnixNano()), nil
}

// Load reads and decodes the file.
func (f *File) Load(ctx context.Context) ([]any, error) {
	format := f.Format
	if format == "" {
		var err error
		if format, err = DetectFormat(f.Path); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "read %s", f.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}
	return Decode(bytes.NewReader(data), format)
}

// DetectFormat maps a file extension to a format name.
func DetectFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errs.New(errs.ErrCodeInvalidFormat, "unsupported file type: %s (must be .json, .yaml, .yml or .toml)", path)
	}
}

// Decode reads rows in the given format from r.
func Decode(r io.Reader, format string) ([]any, error) {
	var doc any
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode JSON")
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode YAML")
		}
	case FormatTOML:
		var table map[string]any
		if _, err := toml.NewDecoder(r).Decode(&table); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode TOML")
		}
		doc = table
	default:
		return nil, errs.New(errs.ErrCodeInvalidFormat, "unsupported format: %q", format)
	}
	return rowsOf(doc, format)
}

// rowsOf unwraps the "items" object form and normalizes the row list type.
func rowsOf(doc any, format string) ([]any, error) {
	if obj, ok := doc.(map[string]any); ok {
		items, found := obj[itemsKey]
		if !found {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "%s document has no %q list", format, itemsKey)
		}
		doc = items
	}

	var rows []any
	switch list := doc.(type) {
	case nil:
		return []any{}, nil
	case []any:
		rows = list
	case []map[string]any:
		rows = make([]any, len(list))
		for i, m := range list {
			rows[i] = m
		}
	default:
		return nil, errs.New(errs.ErrCodeInvalidFormat, "%s document must hold a list of rows, got %T", format, doc)
	}

	if format == FormatTOML {
		for _, r := range rows {
			if m, ok := r.(map[string]any); ok {
				if _, has := m["parent_id"]; !has {
					if _, alt := m["parentId"]; !alt {
						m["parent_id"] = nil
					}
				}
			}
		}
	}
	return rows, nil
}

var (
	_ Source    = (*File)(nil)
	_ Versioned = (*File)(nil)
)
