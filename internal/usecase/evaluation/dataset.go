package evaluation

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Case is one labelled query.
type Case struct {
	Query    string   `yaml:"query"`
	Relevant []string `yaml:"relevant"`
}

// Dataset is a labelled query set.
type Dataset struct {
	Name  string `yaml:"name"`
	Cases []Case `yaml:"cases"`
}

// LoadDataset reads a YAML dataset from path.
func LoadDataset(path string) (Dataset, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return Dataset{}, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseDataset(f)
}

// ParseDataset decodes and validates a YAML dataset. Unknown keys are rejected.
func ParseDataset(r io.Reader) (Dataset, error) {
	var ds Dataset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		if errors.Is(err, io.EOF) {
			return Dataset{}, errors.New("dataset is empty")
		}
		return Dataset{}, fmt.Errorf("decode dataset: %w", err)
	}

	if len(ds.Cases) == 0 {
		return Dataset{}, errors.New("dataset has no cases")
	}
	for i, c := range ds.Cases {
		if strings.TrimSpace(c.Query) == "" {
			return Dataset{}, fmt.Errorf("case %d: query is required", i+1)
		}
		if len(c.Relevant) == 0 {
			return Dataset{}, fmt.Errorf("case %d: at least one relevant url is required", i+1)
		}
	}
	return ds, nil
}
