package team

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed team_aliases.yaml
var defaultAliasData []byte

type aliasFile struct {
	Teams []struct {
		Canonical string   `yaml:"canonical"`
		Aliases   []string `yaml:"aliases"`
	} `yaml:"teams"`
}

// AliasTable maps spelling variants to one canonical club name. Keys are
// compared after NormalizeName.
type AliasTable struct {
	canonical map[string]string
}

// DefaultAliases returns the table shipped with the binary.
func DefaultAliases() *AliasTable {
	table, err := ParseAliases(strings.NewReader(string(defaultAliasData)))
	if err != nil {
		panic(fmt.Sprintf("parse embedded team aliases: %v", err))
	}
	return table
}

// LoadAliasFile reads an alias table from disk.
func LoadAliasFile(path string) (*AliasTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open alias file: %w", err)
	}
	defer f.Close()

	return ParseAliases(f)
}

func ParseAliases(r io.Reader) (*AliasTable, error) {
	var doc aliasFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode alias yaml: %w", err)
	}

	table := &AliasTable{canonical: make(map[string]string)}
	for i, entry := range doc.Teams {
		canonical := strings.TrimSpace(entry.Canonical)
		if canonical == "" {
			return nil, fmt.Errorf("alias entry %d: canonical name is required", i)
		}
		table.add(canonical, canonical)
		for _, alias := range entry.Aliases {
			table.add(alias, canonical)
		}
	}
	return table, nil
}

func (t *AliasTable) add(alias, canonical string) {
	key := NormalizeName(alias)
	if key == "" {
		return
	}
	t.canonical[key] = canonical
}

// Canonical returns the canonical display name for name, or name itself when
// no alias is known.
func (t *AliasTable) Canonical(name string) string {
	if t != nil {
		if canonical, ok := t.canonical[NormalizeName(name)]; ok {
			return canonical
		}
	}
	return strings.TrimSpace(name)
}

// Key is the normalized lookup key for name after alias resolution.
func (t *AliasTable) Key(name string) string {
	return NormalizeName(t.Canonical(name))
}

func (t *AliasTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.canonical)
}
