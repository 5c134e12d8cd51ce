package match

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gocv.io/x/gocv"

	apperrors "github.com/Not-Dhanraj/Star-Scout/internal/errors"
)

// Asset is a named grayscale reference image. Assets are read-only once loaded.
type Asset struct {
	Name  string
	Image gocv.Mat
}

// Assets is the loaded template set, sorted by file name.
type Assets []Asset

// LoadAssets reads every PNG or JPEG in dir as grayscale. Unreadable files
// are skipped with a warning; a missing directory is an error.
func LoadAssets(dir string) (Assets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeAssetLoadFailed, "read template dir").
			WithMetadata("dir", dir)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && assetExts[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	assets := make(Assets, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		img := gocv.IMRead(path, gocv.IMReadGrayScale)
		if img.Empty() {
			img.Close()
			slog.Warn("skipping unreadable template", "path", path)
			continue
		}
		assets = append(assets, Asset{
			Name:  strings.TrimSuffix(name, filepath.Ext(name)),
			Image: img,
		})
	}
	slog.Info("templates loaded", "dir", dir, "count", len(assets))
	return assets, nil
}

func (a Assets) Names() []string {
	out := make([]string, len(a))
	for i, asset := range a {
		out[i] = asset.Name
	}
	return out
}

// Close releases the image memory.
func (a Assets) Close() {
	for i := range a {
		a[i].Image.Close()
	}
}
