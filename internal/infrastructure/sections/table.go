package sections

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed aliases.yaml
var defaultTableYAML []byte

// table is the static normalization knowledge: abbreviation expansions,
// credential equivalence groups, and the skill vocabulary.
type table struct {
	Aliases          map[string]string   `yaml:"aliases"`
	CredentialGroups map[string][]string `yaml:"credential_groups"`
	Skills           []string            `yaml:"skills"`
}

func loadDefaultTable() (table, error) {
	return parseTable(defaultTableYAML)
}

func loadTableFile(path string) (table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return table{}, fmt.Errorf("read alias table: %w", err)
	}
	return parseTable(raw)
}

func parseTable(raw []byte) (table, error) {
	var t table
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return table{}, fmt.Errorf("parse alias table yaml: %w", err)
	}
	if len(t.Aliases) == 0 && len(t.Skills) == 0 {
		return table{}, fmt.Errorf("alias table is empty")
	}
	return t, nil
}

// maxAliasTokens returns the token count of the longest alias key, bounding
// the lookahead during expansion.
func (t table) maxAliasTokens() int {
	max := 0
	for k := range t.Aliases {
		if n := len(strings.Fields(k)); n > max {
			max = n
		}
	}
	return max
}
