package taskfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrTOMLComments is returned by FormatFile for a TOML task file that contains comments. The TOML encoder cannot
// carry comments through, so such files are left untouched
var ErrTOMLComments = errors.New("toml task file has comments, which re-encoding would drop")

// Encode renders tf in canonical form for the given format. Map keys are sorted and fields keep declaration order,
// so encoding is stable across runs
func Encode(tf *Taskfile, format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatYAML:
		if err := encodeYAML(&buf, tf); err != nil {
			return nil, err
		}
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(tf); err != nil {
			return nil, fmt.Errorf("failed to encode toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown task file format '%s'", format)
	}
	return buf.Bytes(), nil
}

// FormatYAMLSource normalizes YAML task file source while keeping its comments and key order. Indentation becomes
// two spaces, vars and env are sorted by key, and every run is written as a one-line list
func FormatYAMLSource(src []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("task file is empty")
	}
	if err := normalizeTaskfileNode(doc.Content[0]); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := encodeYAML(&buf, &doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatFile rewrites the task file at tf.Path in canonical form. It reports whether the file changed. The embedded
// default has no file and is left alone
func FormatFile(tf *Taskfile) (bool, error) {
	if tf.IsEmbedded() {
		return false, nil
	}

	current, err := os.ReadFile(tf.Path)
	if err != nil {
		return false, fmt.Errorf("failed to read task file: %w", err)
	}

	var formatted []byte
	switch tf.Format {
	case FormatYAML:
		formatted, err = FormatYAMLSource(current)
	case FormatTOML:
		if bytes.ContainsRune(current, '#') {
			return false, ErrTOMLComments
		}
		formatted, err = Encode(tf, FormatTOML)
	default:
		err = fmt.Errorf("unknown task file format '%s'", tf.Format)
	}
	if err != nil {
		return false, err
	}
	if bytes.Equal(current, formatted) {
		return false, nil
	}

	info, err := os.Stat(tf.Path)
	if err != nil {
		return false, fmt.Errorf("failed to stat task file: %w", err)
	}
	if err := os.WriteFile(tf.Path, formatted, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("failed to write task file: %w", err)
	}
	return true, nil
}

func encodeYAML(buf *bytes.Buffer, v interface{}) error {
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return nil
}

func normalizeTaskfileNode(root *yaml.Node) error {
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: task file must be a mapping", root.Line)
	}
	if vars := mappingValue(root, "vars"); vars != nil {
		sortMapping(vars)
	}
	targets := mappingValue(root, "targets")
	if targets == nil || targets.Kind != yaml.SequenceNode {
		return nil
	}
	for _, target := range targets.Content {
		steps := mappingValue(target, "steps")
		if steps == nil || steps.Kind != yaml.SequenceNode {
			continue
		}
		for _, step := range steps.Content {
			if env := mappingValue(step, "env"); env != nil {
				sortMapping(env)
			}
			if run := mappingValue(step, "run"); run != nil {
				if err := normalizeRun(run); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// normalizeRun rewrites a run node in place as a flow sequence of plain strings
func normalizeRun(run *yaml.Node) error {
	switch run.Kind {
	case yaml.ScalarNode:
		args, err := SplitArgv(run.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", run.Line, err)
		}
		run.Kind = yaml.SequenceNode
		run.Tag = "!!seq"
		run.Value = ""
		run.Content = nil
		for _, arg := range args {
			run.Content = append(run.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: arg})
		}
	case yaml.SequenceNode:
	default:
		return fmt.Errorf("line %d: run must be a string or a list of strings", run.Line)
	}
	run.Style = yaml.FlowStyle
	for _, arg := range run.Content {
		if arg.Kind == yaml.ScalarNode {
			arg.Style = 0
		}
	}
	return nil
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	if m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// sortMapping orders the pairs of a mapping node by key. Comments travel with their key and value nodes
func sortMapping(m *yaml.Node) {
	if m.Kind != yaml.MappingNode {
		return
	}
	type pair struct{ key, value *yaml.Node }
	pairs := make([]pair, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		pairs = append(pairs, pair{m.Content[i], m.Content[i+1]})
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].key.Value < pairs[j].key.Value
	})
	m.Content = m.Content[:0]
	for _, p := range pairs {
		m.Content = append(m.Content, p.key, p.value)
	}
}
