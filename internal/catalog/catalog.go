// Package catalog provides the immutable list of sellable items.
//
// The catalog is loaded once at startup, either from the bundled items.json
// or from an operator supplied JSON/YAML file, and never changes afterwards.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"posjournal/internal/core"
)

//go:embed items.json
var defaultItems []byte

// Provider is a read-only catalog. It is safe for concurrent use since it
// never mutates after construction.
type Provider struct {
	items  []core.CatalogItem
	byName map[string]int
}

// record is the on-disk shape. Prices are read as text so that YAML
// scalars and JSON numbers both keep their exact decimal value.
type record struct {
	ItemName  string      `json:"itemName" yaml:"itemName"`
	Category  string      `json:"category" yaml:"category"`
	UnitPrice json.Number `json:"unitPrice" yaml:"unitPrice"`
}

// New builds a catalog from items, rejecting invalid entries and duplicate
// item names.
func New(items []core.CatalogItem) (*Provider, error) {
	p := &Provider{
		items:  make([]core.CatalogItem, 0, len(items)),
		byName: make(map[string]int, len(items)),
	}
	for i, it := range items {
		it.ItemName = nameKey(it.ItemName)
		it.Category = strings.TrimSpace(it.Category)
		if err := it.Validate(); err != nil {
			return nil, fmt.Errorf("catalog item %d: %w", i, err)
		}
		if _, dup := p.byName[it.ItemName]; dup {
			return nil, fmt.Errorf("catalog item %d: duplicate item name %q", i, it.ItemName)
		}
		p.byName[it.ItemName] = len(p.items)
		p.items = append(p.items, it)
	}
	return p, nil
}

// Default returns the catalog bundled with the binary.
func Default() (*Provider, error) {
	return parse(defaultItems, json.Unmarshal)
}

// LoadFile reads a catalog from a .json, .yaml or .yml file.
func LoadFile(path string) (*Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parse(data, yaml.Unmarshal)
	case ".json":
		return parse(data, json.Unmarshal)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", filepath.Ext(path))
	}
}

// Load returns the catalog at path, or the bundled one when path is empty.
func Load(path string) (*Provider, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	return LoadFile(path)
}

func parse(data []byte, unmarshal func([]byte, any) error) (*Provider, error) {
	var recs []record
	if err := unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	items := make([]core.CatalogItem, 0, len(recs))
	for _, r := range recs {
		price, err := core.ParseMoney(r.UnitPrice.String())
		if err != nil {
			return nil, fmt.Errorf("item %q: unit price %q: %w", r.ItemName, r.UnitPrice, err)
		}
		items = append(items, core.CatalogItem{
			ItemName:  r.ItemName,
			Category:  r.Category,
			UnitPrice: price,
		})
	}
	return New(items)
}

// Items returns a copy of the catalog in file order.
func (p *Provider) Items() []core.CatalogItem {
	return append([]core.CatalogItem(nil), p.items...)
}

// Len returns the number of items.
func (p *Provider) Len() int { return len(p.items) }

// nameKey trims name and puts it in NFC so that "Café" typed with a
// combining accent still matches the catalog entry.
func nameKey(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// Lookup finds an item by its exact name.
func (p *Provider) Lookup(name string) (core.CatalogItem, bool) {
	i, ok := p.byName[nameKey(name)]
	if !ok {
		return core.CatalogItem{}, false
	}
	return p.items[i], true
}

// Search returns the items whose name contains term, ignoring case.
// An empty term matches everything.
func (p *Provider) Search(term string) []core.CatalogItem {
	// A Caser keeps state, so each call gets its own.
	fold := cases.Fold()
	term = fold.String(nameKey(term))
	if term == "" {
		return p.Items()
	}
	var out []core.CatalogItem
	for _, it := range p.items {
		if strings.Contains(fold.String(it.ItemName), term) {
			out = append(out, it)
		}
	}
	return out
}

// Categories lists the distinct categories in first-occurrence order.
func (p *Provider) Categories() []string {
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, it := range p.items {
		if _, ok := seen[it.Category]; ok {
			continue
		}
		seen[it.Category] = struct{}{}
		out = append(out, it.Category)
	}
	return out
}
