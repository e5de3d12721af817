package generator

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	manifestFileName    = ".sitegen-manifest.json"
	manifestFileVersion = 1
)

// buildManifest stores metadata about the last build so incremental runs can
// skip unchanged pages and assets.
type buildManifest struct {
	Version     int                      `json:"version"`
	GeneratedAt time.Time                `json:"generated_at"`
	Pages       map[string]manifestPage  `json:"pages"`
	Assets      map[string]manifestAsset `json:"assets"`
}

type manifestPage struct {
	Route        string    `json:"route"`
	Source       string    `json:"source,omitempty"`
	Output       string    `json:"output"`
	Layout       string    `json:"layout"`
	Template     string    `json:"template"`
	Hash         string    `json:"hash"`
	Checksum     string    `json:"checksum"`
	Draft        bool      `json:"draft,omitempty"`
	LastModified time.Time `json:"last_modified"`
	RenderedAt   time.Time `json:"rendered_at"`
}

type manifestAsset struct {
	Key      string    `json:"key"`
	Source   string    `json:"source"`
	Output   string    `json:"output"`
	Checksum string    `json:"checksum"`
	Size     int64     `json:"size"`
	CopiedAt time.Time `json:"copied_at"`
}

// manifestFile is the on-disk shape. Pages and assets persist as sorted
// slices so the file diffs cleanly between builds.
type manifestFile struct {
	Version     int             `json:"version"`
	GeneratedAt time.Time       `json:"generated_at"`
	Pages       []manifestPage  `json:"pages,omitempty"`
	Assets      []manifestAsset `json:"assets,omitempty"`
}

func newBuildManifest() *buildManifest {
	return &buildManifest{
		Version: manifestFileVersion,
		Pages:   map[string]manifestPage{},
		Assets:  map[string]manifestAsset{},
	}
}

// UnmarshalJSON rebuilds the lookup maps from the slice-based file shape.
func (m *buildManifest) UnmarshalJSON(data []byte) error {
	var file manifestFile
	if err := json.Unmarshal(data, &file); err != nil {
		return err
	}
	m.Version = file.Version
	m.GeneratedAt = file.GeneratedAt
	m.Pages = make(map[string]manifestPage, len(file.Pages))
	for _, entry := range file.Pages {
		key := pageKey(entry.Route)
		if key == "" {
			continue
		}
		m.Pages[key] = entry
	}
	m.Assets = make(map[string]manifestAsset, len(file.Assets))
	for _, entry := range file.Assets {
		key := assetKey(entry.Key)
		if key == "" {
			continue
		}
		m.Assets[key] = entry
	}
	return nil
}

func parseManifest(data []byte) (*buildManifest, error) {
	if len(data) == 0 {
		return newBuildManifest(), nil
	}
	var manifest buildManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("generator: parse manifest: %w", err)
	}
	if manifest.Pages == nil {
		manifest.Pages = map[string]manifestPage{}
	}
	if manifest.Assets == nil {
		manifest.Assets = map[string]manifestAsset{}
	}
	if manifest.Version == 0 {
		manifest.Version = manifestFileVersion
	}
	return &manifest, nil
}

func (m *buildManifest) marshal() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	ordered := manifestFile{
		Version:     m.Version,
		GeneratedAt: m.GeneratedAt,
	}
	if ordered.Version == 0 {
		ordered.Version = manifestFileVersion
	}
	if len(m.Pages) > 0 {
		ordered.Pages = make([]manifestPage, 0, len(m.Pages))
		for _, entry := range m.Pages {
			ordered.Pages = append(ordered.Pages, entry)
		}
		sort.Slice(ordered.Pages, func(i, j int) bool {
			return ordered.Pages[i].Route < ordered.Pages[j].Route
		})
	}
	if len(m.Assets) > 0 {
		ordered.Assets = make([]manifestAsset, 0, len(m.Assets))
		for _, entry := range m.Assets {
			ordered.Assets = append(ordered.Assets, entry)
		}
		sort.Slice(ordered.Assets, func(i, j int) bool {
			return ordered.Assets[i].Key < ordered.Assets[j].Key
		})
	}
	return json.MarshalIndent(ordered, "", "  ")
}

func pageKey(route string) string {
	return strings.ToLower(strings.TrimSpace(route))
}

func assetKey(rel string) string {
	return strings.TrimLeft(strings.TrimSpace(rel), "/")
}

func (m *buildManifest) lookupPage(route string) (manifestPage, bool) {
	if m == nil || len(m.Pages) == 0 {
		return manifestPage{}, false
	}
	entry, ok := m.Pages[pageKey(route)]
	return entry, ok
}

func (m *buildManifest) setPage(entry manifestPage) {
	if m == nil {
		return
	}
	if m.Pages == nil {
		m.Pages = map[string]manifestPage{}
	}
	m.Pages[pageKey(entry.Route)] = entry
}

func (m *buildManifest) shouldSkipPage(route, hash, output string) bool {
	entry, ok := m.lookupPage(route)
	if !ok {
		return false
	}
	if hash == "" || entry.Hash != hash {
		return false
	}
	return strings.TrimSpace(entry.Output) == strings.TrimSpace(output)
}

func (m *buildManifest) lookupAsset(rel string) (manifestAsset, bool) {
	if m == nil || len(m.Assets) == 0 {
		return manifestAsset{}, false
	}
	entry, ok := m.Assets[assetKey(rel)]
	return entry, ok
}

func (m *buildManifest) setAsset(entry manifestAsset) {
	if m == nil {
		return
	}
	if m.Assets == nil {
		m.Assets = map[string]manifestAsset{}
	}
	if entry.Key == "" {
		entry.Key = assetKey(entry.Output)
	}
	m.Assets[entry.Key] = entry
}

func (m *buildManifest) shouldSkipAsset(rel, checksum, output string) bool {
	entry, ok := m.lookupAsset(rel)
	if !ok {
		return false
	}
	if checksum == "" || entry.Checksum != checksum {
		return false
	}
	return strings.TrimSpace(entry.Output) == strings.TrimSpace(output)
}

// prune drops entries that were not touched by the current build so deleted
// documents and assets stop surfacing in sitemaps and skip checks.
func (m *buildManifest) prune(pageKeys, assetKeys map[string]struct{}) {
	if m == nil {
		return
	}
	for key := range m.Pages {
		if _, ok := pageKeys[key]; !ok {
			delete(m.Pages, key)
		}
	}
	for key := range m.Assets {
		if _, ok := assetKeys[key]; !ok {
			delete(m.Assets, key)
		}
	}
}
