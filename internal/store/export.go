package store

import (
	"context"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

// exportRecord is the YAML shape written by Export
type exportRecord struct {
	Name      string `yaml:"name"`
	Mode      string `yaml:"mode"`
	Reference string `yaml:"reference"`
	Elapsed   int64  `yaml:"elapsed"`
	Running   bool   `yaml:"running"`
}

// Export writes every counter to w as a YAML sequence sorted by name.
// Unlike LoadAll it fails when the collection cannot be read.
func (s *Store) Export(ctx context.Context, w io.Writer) error {
	counters, err := s.Load(ctx)
	if err != nil {
		return err
	}

	out := make([]exportRecord, 0, len(counters))
	for _, c := range counters {
		out = append(out, exportRecord{
			Name:      c.Name,
			Mode:      string(c.Mode),
			Reference: c.Reference.UTC().Format(isoLayout),
			Elapsed:   c.Elapsed,
			Running:   c.IsRunning,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return enc.Close()
}
