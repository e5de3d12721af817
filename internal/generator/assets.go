package generator

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-sitegen/internal/layouts"
)

// Asset describes one file copied verbatim into the output tree. Source is
// the origin on disk; Rel is the destination relative to the output root.
type Asset struct {
	Source string
	Rel    string
}

// AssetResolver enumerates and opens the static inputs of a build.
type AssetResolver interface {
	Assets(ctx context.Context) ([]Asset, error)
	Open(ctx context.Context, asset Asset) (io.ReadCloser, error)
}

// NewLayoutAssets exposes the manifest-declared files of the active layout
// set, resolved against the layout directory.
func NewLayoutAssets(svc layouts.Service, dir string) AssetResolver {
	return &layoutAssets{svc: svc, dir: dir}
}

type layoutAssets struct {
	svc layouts.Service
	dir string
}

func (a *layoutAssets) Assets(context.Context) ([]Asset, error) {
	if a.svc == nil || strings.TrimSpace(a.dir) == "" {
		return nil, nil
	}
	var out []Asset
	for _, rel := range a.svc.Assets() {
		rel = strings.TrimLeft(strings.TrimSpace(rel), "/")
		if rel == "" {
			continue
		}
		out = append(out, Asset{
			Source: filepath.Join(a.dir, filepath.FromSlash(rel)),
			Rel:    rel,
		})
	}
	return out, nil
}

func (a *layoutAssets) Open(_ context.Context, asset Asset) (io.ReadCloser, error) {
	return os.Open(asset.Source)
}

// NewStaticAssets copies a directory tree verbatim into the output root. A
// missing directory yields no assets rather than an error.
func NewStaticAssets(dir string) AssetResolver {
	return &staticAssets{dir: dir}
}

type staticAssets struct {
	dir string
}

func (a *staticAssets) Assets(context.Context) ([]Asset, error) {
	dir := strings.TrimSpace(a.dir)
	if dir == "" {
		return nil, nil
	}
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var out []Asset
	err = fs.WalkDir(os.DirFS(dir), ".", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") && name != "." {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		out = append(out, Asset{
			Source: filepath.Join(dir, filepath.FromSlash(p)),
			Rel:    p,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *staticAssets) Open(_ context.Context, asset Asset) (io.ReadCloser, error) {
	return os.Open(asset.Source)
}
