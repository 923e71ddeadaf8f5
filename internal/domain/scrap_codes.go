package domain

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed scrap_codes.yaml
var scrapCodesYAML []byte

// ScrapCode is one entry of the internal scrap-code catalog.
type ScrapCode struct {
	Code          string    `yaml:"code" json:"code"`
	Type          ScrapType `yaml:"type" json:"type"`
	Description   string    `yaml:"description" json:"description"`
	CopperPercent float64   `yaml:"copper_percent" json:"copper_percent"`
}

type scrapCatalogFile struct {
	Codes []ScrapCode `yaml:"codes"`
}

var (
	scrapCatalogOnce sync.Once
	scrapCatalog     []ScrapCode
	scrapCatalogErr  error
)

// ScrapCodes returns the embedded catalog in file order.
func ScrapCodes() ([]ScrapCode, error) {
	scrapCatalogOnce.Do(func() {
		scrapCatalog, scrapCatalogErr = parseScrapCodes(scrapCodesYAML)
	})
	if scrapCatalogErr != nil {
		return nil, scrapCatalogErr
	}
	out := make([]ScrapCode, len(scrapCatalog))
	copy(out, scrapCatalog)
	return out, nil
}

// LookupScrapCode finds a catalog entry by code.
func LookupScrapCode(code string) (ScrapCode, bool) {
	codes, err := ScrapCodes()
	if err != nil {
		return ScrapCode{}, false
	}
	for _, c := range codes {
		if c.Code == code {
			return c, true
		}
	}
	return ScrapCode{}, false
}

func parseScrapCodes(data []byte) ([]ScrapCode, error) {
	var f scrapCatalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scrap catalog: %w", err)
	}
	seen := make(map[string]struct{}, len(f.Codes))
	for _, c := range f.Codes {
		if !c.Type.Valid() {
			return nil, fmt.Errorf("scrap code %s: unknown type %q", c.Code, c.Type)
		}
		if _, dup := seen[c.Code]; dup {
			return nil, fmt.Errorf("scrap code %s: duplicate", c.Code)
		}
		seen[c.Code] = struct{}{}
	}
	return f.Codes, nil
}
