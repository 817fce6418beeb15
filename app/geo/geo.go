// Package geo holds the portfolio geography taxonomy and the country
// resolution logic used to classify place-of-performance strings from
// SAM.gov data. The taxonomy is loaded once from an embedded YAML table
// and is immutable afterwards.
package geo

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var taxonomyYAML []byte

// Placement is the two-level geographic grouping assigned to a country.
type Placement struct {
	Region    string
	SubRegion string
}

// Taxonomy is an immutable set of lookup tables built from the embedded
// portfolio geography. Construct with Load and pass by pointer; all methods
// are safe for concurrent use.
type Taxonomy struct {
	nameToCode     map[string]string // uppercased display names and aliases -> ISO3
	codeToName     map[string]string // ISO3 -> display name
	codeToRegion   map[string]Placement
	iso2ToCode     map[string]string
	regionCodes    map[string][]string
	subRegionCodes map[Placement][]string
	regions        []string
	subRegions     map[string][]string

	// Candidate names for the substring fallback, sorted longest first so
	// the most specific entry wins regardless of map iteration order.
	fallbackNames []string
}

type taxonomyFile struct {
	Regions map[string]map[string]map[string]string `yaml:"regions"`
	Aliases map[string]string                       `yaml:"aliases"`
	ISO2    map[string]string                       `yaml:"iso2"`
}

// Values treated as "no country given" rather than a resolution miss.
var sentinels = map[string]struct{}{
	"":        {},
	"NONE":    {},
	"NULL":    {},
	"N/A":     {},
	"UNKNOWN": {},
}

var parenCodeRe = regexp.MustCompile(`\(([A-Za-z]{3})\)`)

// Load parses the embedded taxonomy and builds the lookup tables. It
// validates the invariants the resolver depends on: ISO3 codes are unique
// across the taxonomy and every alias points at a known code.
func Load() (*Taxonomy, error) {
	var file taxonomyFile
	if err := yaml.Unmarshal(taxonomyYAML, &file); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy: %w", err)
	}
	return build(&file)
}

func build(file *taxonomyFile) (*Taxonomy, error) {
	t := &Taxonomy{
		nameToCode:     make(map[string]string),
		codeToName:     make(map[string]string),
		codeToRegion:   make(map[string]Placement),
		iso2ToCode:     make(map[string]string),
		regionCodes:    make(map[string][]string),
		subRegionCodes: make(map[Placement][]string),
		subRegions:     make(map[string][]string),
	}

	for region, subRegions := range file.Regions {
		t.regions = append(t.regions, region)
		for subRegion, countries := range subRegions {
			placement := Placement{Region: region, SubRegion: subRegion}
			t.subRegions[region] = append(t.subRegions[region], subRegion)
			for name, code := range countries {
				if len(code) != 3 || !isUpperAlpha(code) {
					return nil, fmt.Errorf("invalid ISO3 code %q for %q", code, name)
				}
				if existing, ok := t.codeToName[code]; ok {
					return nil, fmt.Errorf("duplicate ISO3 code %s: %q and %q", code, existing, name)
				}
				upper := strings.ToUpper(name)
				if existing, ok := t.nameToCode[upper]; ok {
					return nil, fmt.Errorf("duplicate country name %q (codes %s, %s)", name, existing, code)
				}
				t.nameToCode[upper] = code
				t.codeToName[code] = name
				t.codeToRegion[code] = placement
				t.regionCodes[region] = append(t.regionCodes[region], code)
				t.subRegionCodes[placement] = append(t.subRegionCodes[placement], code)
			}
		}
	}

	for alias, code := range file.Aliases {
		if _, ok := t.codeToName[code]; !ok {
			return nil, fmt.Errorf("alias %q points at unknown code %s", alias, code)
		}
		upper := strings.ToUpper(alias)
		if existing, ok := t.nameToCode[upper]; ok && existing != code {
			return nil, fmt.Errorf("alias %q contradicts name table (%s vs %s)", alias, code, existing)
		}
		t.nameToCode[upper] = code
	}

	for iso2, code := range file.ISO2 {
		if _, ok := t.codeToName[code]; !ok {
			return nil, fmt.Errorf("ISO2 entry %q points at unknown code %s", iso2, code)
		}
		t.iso2ToCode[strings.ToUpper(iso2)] = code
	}

	for name := range t.nameToCode {
		t.fallbackNames = append(t.fallbackNames, name)
	}
	// Longest first, then lexicographic, so fallback matching is
	// deterministic and the most specific name wins.
	sort.Slice(t.fallbackNames, func(i, j int) bool {
		a, b := t.fallbackNames[i], t.fallbackNames[j]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})

	sort.Strings(t.regions)
	for region := range t.subRegions {
		sort.Strings(t.subRegions[region])
	}
	for region := range t.regionCodes {
		sort.Strings(t.regionCodes[region])
	}
	for placement := range t.subRegionCodes {
		sort.Strings(t.subRegionCodes[placement])
	}

	return t, nil
}

// Resolve maps an arbitrary place-of-performance string to an ISO3 code.
// The second return value is false when the input is empty, a sentinel, or
// does not match any known country. Checks run cheapest and most specific
// first; the first match wins.
func (t *Taxonomy) Resolve(raw string) (string, bool) {
	value := strings.ToUpper(strings.TrimSpace(raw))

	if _, ok := sentinels[value]; ok {
		return "", false
	}

	// Exact ISO3 code.
	if len(value) == 3 && isUpperAlpha(value) {
		if _, ok := t.codeToName[value]; ok {
			return value, true
		}
	}

	// Exact display name or alias.
	if code, ok := t.nameToCode[value]; ok {
		return code, true
	}

	// Parenthetical code, e.g. "KENYA (KEN)".
	if m := parenCodeRe.FindStringSubmatch(value); m != nil {
		code := strings.ToUpper(m[1])
		if _, ok := t.codeToName[code]; ok {
			return code, true
		}
	}

	// Common two-letter codes.
	if len(value) == 2 {
		if code, ok := t.iso2ToCode[value]; ok {
			return code, true
		}
	}

	// Substring fallback for longer strings. Candidates are scanned longest
	// first from a sorted list, so ties break deterministically toward the
	// most specific name.
	if len(value) > 3 {
		for _, name := range t.fallbackNames {
			if strings.Contains(value, name) || strings.Contains(name, value) {
				return t.nameToCode[name], true
			}
		}
	}

	return "", false
}

// Region returns the (region, sub-region) placement for an ISO3 code. A
// false return for a code produced by Resolve indicates a corrupted
// taxonomy and is treated as a defect by callers.
func (t *Taxonomy) Region(code string) (Placement, bool) {
	placement, ok := t.codeToRegion[code]
	return placement, ok
}

// DisplayName returns the canonical display name for an ISO3 code.
func (t *Taxonomy) DisplayName(code string) (string, bool) {
	name, ok := t.codeToName[code]
	return name, ok
}

// Standardize resolves a raw country string and renders it in the stored
// "Display Name (ISO3)" form, preserving traceability to the code.
func (t *Taxonomy) Standardize(raw string) (string, bool) {
	code, ok := t.Resolve(raw)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%s (%s)", t.codeToName[code], code), true
}

// Regions returns all region names in sorted order.
func (t *Taxonomy) Regions() []string {
	return append([]string(nil), t.regions...)
}

// SubRegions returns the sub-region names of a region in sorted order.
func (t *Taxonomy) SubRegions(region string) []string {
	return append([]string(nil), t.subRegions[region]...)
}

// Codes returns every ISO3 code in the taxonomy in sorted order.
func (t *Taxonomy) Codes() []string {
	codes := make([]string, 0, len(t.codeToName))
	for code := range t.codeToName {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// CountriesByRegion returns the ISO3 codes belonging to a region.
func (t *Taxonomy) CountriesByRegion(region string) []string {
	return append([]string(nil), t.regionCodes[region]...)
}

// CountriesBySubRegion returns the ISO3 codes belonging to a sub-region.
func (t *Taxonomy) CountriesBySubRegion(region, subRegion string) []string {
	return append([]string(nil), t.subRegionCodes[Placement{Region: region, SubRegion: subRegion}]...)
}

func isUpperAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
