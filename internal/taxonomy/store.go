package taxonomy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// KeywordRule is a user-supplied keyword rule loaded from YAML. Custom
// rules can only target existing category keys; the taxonomy itself stays
// closed.
type KeywordRule struct {
	Name        string   `yaml:"name"`
	Category    string   `yaml:"category"`
	Subcategory string   `yaml:"subcategory"`
	Ledger      string   `yaml:"ledger"`
	Confidence  int      `yaml:"confidence"`
	Keywords    []string `yaml:"keywords"`
}

type rulesFile struct {
	Rules []KeywordRule `yaml:"rules"`
}

// LoadKeywordRules reads custom keyword rules from a YAML file. A missing
// file is not an error; the built-in cascade is used alone. Rules naming
// an unknown category key or carrying no keywords are skipped.
func LoadKeywordRules(path string) ([]KeywordRule, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading rules file %s: %w", path, err)
	}

	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing rules file %s: %w", path, err)
	}

	rules := make([]KeywordRule, 0, len(f.Rules))
	for _, r := range f.Rules {
		if !IsValid(r.Category) || len(r.Keywords) == 0 {
			continue
		}
		if r.Confidence <= 0 || r.Confidence > 100 {
			r.Confidence = 75
		}
		if r.Subcategory == "" || r.Ledger == "" {
			e, _ := Lookup(r.Category)
			if r.Subcategory == "" {
				r.Subcategory = e.DefaultSubcategory
			}
			if r.Ledger == "" {
				r.Ledger = e.DefaultLedger
			}
		}
		rules = append(rules, r)
	}
	return rules, nil
}
