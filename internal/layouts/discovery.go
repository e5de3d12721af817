package layouts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
)

// LayoutSeed describes a template file found in a layout directory.
type LayoutSeed struct {
	Name     string
	Set      string
	Variant  string
	Template string
	Path     string
	Partial  bool
}

var templateExtensions = map[string]struct{}{
	".html": {},
	".tmpl": {},
}

// DiscoverSeeds walks dir and returns a seed per template file. Files whose
// base name starts with an underscore are marked as partials; subdirectories
// become the seed's set.
func DiscoverSeeds(dir string) ([]LayoutSeed, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("layouts: layout directory required")
	}
	if info, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("layouts: stat layout directory: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("layouts: %s is not a directory", dir)
	}

	root := os.DirFS(dir)
	seeds := []LayoutSeed{}
	err := fs.WalkDir(root, ".", func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		ext := strings.ToLower(path.Ext(p))
		if _, ok := templateExtensions[ext]; !ok {
			return nil
		}

		base := path.Base(p)
		seeds = append(seeds, LayoutSeed{
			Name:     strings.TrimSuffix(base, ext),
			Set:      path.Dir(p),
			Template: base,
			Path:     p,
			Partial:  strings.HasPrefix(base, "_"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("layouts: walk layout directory: %w", err)
	}

	for i := range seeds {
		if seeds[i].Set == "." {
			seeds[i].Set = ""
		}
	}
	sort.Slice(seeds, func(i, j int) bool { return seeds[i].Path < seeds[j].Path })
	return seeds, nil
}

// Bootstrap applies seeds to the provided service, tolerating duplicates.
func Bootstrap(ctx context.Context, svc Service, seeds []LayoutSeed) error {
	for _, seed := range seeds {
		input := RegisterLayoutInput{
			Name:     seed.Name,
			Set:      seed.Set,
			Variant:  seed.Variant,
			Template: seed.Template,
			Path:     seed.Path,
			Partial:  seed.Partial,
		}
		if _, err := svc.RegisterLayout(ctx, input); err != nil {
			if errors.Is(err, ErrLayoutExists) {
				continue
			}
			return err
		}
	}
	return nil
}
