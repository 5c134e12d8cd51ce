package match

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// badge draws a coarse high-contrast pattern that survives rescaling.
func badge(w, h int) *image.NRGBA {
	img := imaging.New(w, h, color.Black)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x*4/w+y*2/h)%2 == 0 {
				img.Set(x, y, color.White)
			}
		}
	}
	return img
}

func frameWithBadge(region Region) *image.NRGBA {
	frame := imaging.New(400, 300, color.Gray{Y: 90})
	b := badge(region.Dx()*2/3, region.Dy()*2/3)
	return imaging.Paste(frame, b, image.Pt(region.X1+10, region.Y1+10))
}

func writeAssets(t *testing.T, imgs map[string]image.Image) string {
	t.Helper()
	dir := t.TempDir()
	for name, img := range imgs {
		require.NoError(t, imaging.Save(img, filepath.Join(dir, name)))
	}
	return dir
}

func TestLoadAssetsSortedAndFiltered(t *testing.T) {
	dir := writeAssets(t, map[string]image.Image{
		"b_icon.png": badge(40, 20),
		"a_icon.jpg": badge(40, 20),
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not a png"), 0o644))

	assets, err := LoadAssets(dir)
	require.NoError(t, err)
	defer assets.Close()

	assert.Equal(t, []string{"a_icon", "b_icon"}, assets.Names())
	for _, a := range assets {
		assert.Equal(t, 1, a.Image.Channels())
	}
}

func TestLoadAssetsMissingDir(t *testing.T) {
	_, err := LoadAssets(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestMatchFindsPastedBadge(t *testing.T) {
	region := Region{100, 80, 280, 200}
	dir := writeAssets(t, map[string]image.Image{"badge.png": badge(60, 40)})
	assets, err := LoadAssets(dir)
	require.NoError(t, err)
	defer assets.Close()

	res := NewMatcher(DefaultThreshold).Match(frameWithBadge(region), assets, region)
	assert.True(t, res.Found)
	assert.Equal(t, "badge", res.Name)
	assert.GreaterOrEqual(t, res.Confidence, DefaultThreshold)
	assert.LessOrEqual(t, res.Confidence, 1.0)
}

func TestMatchRegionOutOfBounds(t *testing.T) {
	dir := writeAssets(t, map[string]image.Image{"badge.png": badge(60, 40)})
	assets, err := LoadAssets(dir)
	require.NoError(t, err)
	defer assets.Close()

	frame := imaging.New(400, 300, color.White)
	res := NewMatcher(DefaultThreshold).Match(frame, assets, Region{300, 200, 500, 400})
	assert.Equal(t, Result{}, res)
}

func TestMatchThresholdMonotonic(t *testing.T) {
	region := Region{100, 80, 280, 200}
	dir := writeAssets(t, map[string]image.Image{"badge.png": badge(60, 40)})
	assets, err := LoadAssets(dir)
	require.NoError(t, err)
	defer assets.Close()
	frame := frameWithBadge(region)

	never := NewMatcher(1.01).Match(frame, assets, region)
	require.False(t, never.Found)
	best := never.Confidence

	assert.True(t, NewMatcher(best).Match(frame, assets, region).Found)
	assert.True(t, NewMatcher(best/2).Match(frame, assets, region).Found)
	if best < 1 {
		assert.False(t, NewMatcher(best+0.001).Match(frame, assets, region).Found)
	}
}

func TestMatchNoAssets(t *testing.T) {
	frame := imaging.New(400, 300, color.White)
	res := NewMatcher(0).Match(frame, nil, Region{0, 0, 10, 10})
	assert.False(t, res.Found)
	assert.Zero(t, res.Confidence)
}

func TestMatchDebugImages(t *testing.T) {
	region := Region{100, 80, 280, 200}
	dir := writeAssets(t, map[string]image.Image{"badge.png": badge(60, 40)})
	assets, err := LoadAssets(dir)
	require.NoError(t, err)
	defer assets.Close()

	debugDir := filepath.Join(t.TempDir(), "debug")
	NewMatcher(DefaultThreshold).WithDebugDir(debugDir).Match(frameWithBadge(region), assets, region)

	assert.FileExists(t, filepath.Join(debugDir, "region.png"))
	assert.FileExists(t, filepath.Join(debugDir, "match_badge.png"))
}
