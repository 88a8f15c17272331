package refdata

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oakmere/auditflow/internal/common"
	"github.com/oakmere/auditflow/internal/model"
)

//go:embed seed.yaml
var seedYAML []byte

type seedEntry struct {
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
}

type seedData struct {
	Sections     map[string]seedEntry `yaml:"sections"`
	Publications map[string]seedEntry `yaml:"publications"`
}

var loadSeed = sync.OnceValues(func() (*seedData, error) {
	var data seedData
	if err := yaml.Unmarshal(seedYAML, &data); err != nil {
		return nil, fmt.Errorf("parsing embedded reference data: %w", err)
	}
	return &data, nil
})

// DefaultWarmSections lists the statute sections the factor catalog cites.
func DefaultWarmSections() []string {
	return seedIDs(func(d *seedData) map[string]seedEntry { return d.Sections })
}

// DefaultWarmPublications lists the publications the factor catalog cites.
func DefaultWarmPublications() []string {
	return seedIDs(func(d *seedData) map[string]seedEntry { return d.Publications })
}

func seedIDs(pick func(*seedData) map[string]seedEntry) []string {
	data, err := loadSeed()
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(pick(data)))
	for id := range pick(data) {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SeedFetcher serves the embedded reference dataset. It backs offline
// operation and tests; ids outside the seed are unknown references.
type SeedFetcher struct{}

// Fetch implements service.ReferenceFetcher from the embedded data.
func (SeedFetcher) Fetch(_ context.Context, kind model.ReferenceKind, id string) (*model.ReferenceEntry, error) {
	data, err := loadSeed()
	if err != nil {
		return nil, err
	}

	var (
		entry seedEntry
		ok    bool
	)
	switch kind {
	case model.KindSection:
		entry, ok = data.Sections[id]
	case model.KindPublication:
		entry, ok = data.Publications[id]
	default:
		return nil, fmt.Errorf("%w: kind %q", common.ErrUnknownReference, kind)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", common.ErrUnknownReference, kind, id)
	}

	return &model.ReferenceEntry{
		Kind:      kind,
		ID:        id,
		Title:     entry.Title,
		Content:   entry.Content,
		Source:    "embedded",
		FetchedAt: time.Now().UTC(),
	}, nil
}
