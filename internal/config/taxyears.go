package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v2"

	"github.com/simaogato/wealthflow-forecast/internal/domain"
)

//go:embed tax_years.yaml
var defaultTaxYears []byte

type taxYearsFile struct {
	Years []taxYear `yaml:"years"`
}

type taxYear struct {
	Year       int                `yaml:"year"`
	Thresholds map[string]int64   `yaml:"thresholds"`
	Rates      map[string]float64 `yaml:"rates"`
}

// LoadTaxYears returns the tax-year defaults, read from path when set and from the
// embedded table otherwise. Years are sorted ascending.
func LoadTaxYears(path string) ([]domain.TaxParameters, error) {
	data := defaultTaxYears
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read tax years file: %w", err)
		}
	}
	return ParseTaxYears(data)
}

// ParseTaxYears decodes a YAML tax-year table
func ParseTaxYears(data []byte) ([]domain.TaxParameters, error) {
	var file taxYearsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse tax years: %w", err)
	}

	seen := make(map[int]bool, len(file.Years))
	params := make([]domain.TaxParameters, 0, len(file.Years))
	for _, y := range file.Years {
		if y.Year < 1900 {
			return nil, fmt.Errorf("invalid tax year %d", y.Year)
		}
		if seen[y.Year] {
			return nil, fmt.Errorf("duplicate tax year %d", y.Year)
		}
		seen[y.Year] = true

		p := domain.TaxParameters{Year: y.Year}
		for _, name := range sortedKeys(y.Thresholds) {
			p.Thresholds = append(p.Thresholds, domain.NamedValue{Name: name, Value: y.Thresholds[name]})
		}
		for _, name := range sortedKeys(y.Rates) {
			p.Rates = append(p.Rates, domain.NamedRate{Name: name, Value: y.Rates[name]})
		}
		params = append(params, p)
	}

	sort.Slice(params, func(i, j int) bool { return params[i].Year < params[j].Year })
	return params, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
