package taskfile

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultTaskfile []byte

// WellKnownNames are the file names Discover looks for, in order of preference
var WellKnownNames = []string{"devtasks.yaml", "devtasks.yml", "devtasks.toml"}

// Default returns the embedded task file defining the standard fmt, lint, doc, test and tree targets
func Default() *Taskfile {
	tf, err := Parse(defaultTaskfile, FormatYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded task file is invalid: %v", err))
	}
	return tf
}

// FormatFromPath picks the decoder for a file based on its extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported task file extension '%s' (want .yaml, .yml or .toml)", filepath.Ext(path))
	}
}

// Parse decodes and validates a task file
func Parse(data []byte, format Format) (*Taskfile, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("task file is empty")
	}

	var tf Taskfile
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&tf); err != nil {
			return nil, fmt.Errorf("failed to decode yaml: %w", err)
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &tf)
		if err != nil {
			return nil, fmt.Errorf("failed to decode toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown field '%s'", undecoded[0])
		}
	default:
		return nil, fmt.Errorf("unknown task file format '%s'", format)
	}
	tf.Format = format

	if err := tf.Validate(); err != nil {
		return nil, err
	}
	return &tf, nil
}

// Load reads and parses the task file at path
func Load(path string) (*Taskfile, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file: %w", err)
	}
	tf, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	tf.Path = filepath.Clean(path)
	return tf, nil
}

// Discover loads the first well-known task file found in dir. When there is none, the embedded default is returned
func Discover(dir string) (*Taskfile, error) {
	for _, name := range WellKnownNames {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", path)
		}
		return Load(path)
	}
	return Default(), nil
}
