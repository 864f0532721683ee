package dataset

import (
	iface "SimCapture/interface"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(x1, y1, x2, y2 float64) iface.Box2D {
	return iface.Box2D{Min: iface.Vector2r{X: x1, Y: y1}, Max: iface.Vector2r{X: x2, Y: y2}}
}

func TestLayout(t *testing.T) {
	l := Layout{Base: "/tmp/airsim_drone"}
	f := l.Frame(7)
	assert.Equal(t, filepath.Join("/tmp/airsim_drone", "0", "7_0"), f.Stem)
	assert.Equal(t, f.Stem+"_orig.jpg", f.Orig)
	assert.Equal(t, f.Stem+"_seg.jpg", f.Seg)
	assert.Equal(t, f.Stem+"_annot.jpg", f.Annot)
	assert.Equal(t, f.Stem+".pfm", f.Float)
	assert.Equal(t, f.Stem+".txt", f.Labels)

	// every iteration shares shard 0
	assert.Equal(t, filepath.Dir(l.Stem(0)), filepath.Dir(l.Stem(11)))
}

func TestNormalize(t *testing.T) {
	t.Run("character box", func(t *testing.T) {
		lbl := Normalize(box(100, 100, 200, 300), DefaultDimension)
		assert.Equal(t, "1 0.146 0.195 0.098 0.195", lbl.String())
	})
	t.Run("half ties go to even", func(t *testing.T) {
		lbl := Normalize(box(0, 0, 128, 64), DefaultDimension)
		assert.Equal(t, "1 0.062 0.031 0.125 0.062", lbl.String())
		assert.Equal(t, 0.062, lbl.CX)

		lbl = Normalize(box(0, 0, 192, 128), DefaultDimension)
		assert.Equal(t, "1 0.094 0.062 0.188 0.125", lbl.String())
	})
	t.Run("rounds down", func(t *testing.T) {
		// 150/1024 = 0.146484375
		lbl := Normalize(box(100, 100, 200, 200), DefaultDimension)
		assert.Equal(t, 0.146, lbl.CX)
	})
	t.Run("rounds up", func(t *testing.T) {
		// 50/1024 = 0.048828125, 100/1024 = 0.09765625
		lbl := Normalize(box(0, 0, 100, 100), DefaultDimension)
		assert.Equal(t, "1 0.049 0.049 0.098 0.098", lbl.String())
	})
	t.Run("full frame", func(t *testing.T) {
		lbl := Normalize(box(0, 0, 1024, 1024), DefaultDimension)
		assert.Equal(t, BoundingBoxLabel{Class: "1", CX: 0.5, CY: 0.5, W: 1, H: 1}, lbl)
		assert.Equal(t, "1 0.500 0.500 1.000 1.000", lbl.String())
	})
	t.Run("repeatable", func(t *testing.T) {
		b := box(13.7, 511.2, 640.9, 700.01)
		assert.Equal(t, Normalize(b, DefaultDimension), Normalize(b, DefaultDimension))
	})
	t.Run("other dimension", func(t *testing.T) {
		lbl := Normalize(box(0, 0, 256, 128), 512)
		assert.InDelta(t, 0.25, lbl.CX, 1e-9)
		assert.InDelta(t, 0.125, lbl.CY, 1e-9)
		assert.InDelta(t, 0.5, lbl.W, 1e-9)
		assert.InDelta(t, 0.25, lbl.H, 1e-9)
	})
}

func TestFilter(t *testing.T) {
	dets := []iface.DetectionInfo{
		{Name: "Wall_01", Box2D: box(0, 0, 10, 10)},
		{Name: "Character_03", Box2D: box(100, 100, 200, 300)},
		{Name: "BP_Character_Hero", Box2D: box(1, 2, 3, 4)},
		{Name: "character_lower", Box2D: box(1, 2, 3, 4)},
	}

	kept := Filter(dets, []string{"Character"})
	require.Len(t, kept, 2)
	assert.Equal(t, "Character_03", kept[0].Name)
	assert.Equal(t, "BP_Character_Hero", kept[1].Name)

	t.Run("kept once when several filters match", func(t *testing.T) {
		kept := Filter(dets, []string{"Character", "03"})
		assert.Len(t, kept, 2)
	})
	t.Run("no filters", func(t *testing.T) {
		assert.Empty(t, Filter(dets, nil))
	})
	assert.False(t, Matches("Wall_01", []string{"Character"}))
}

func TestWriteLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "3_0.txt")
	dets := []iface.DetectionInfo{
		{Name: "Character_03", Box2D: box(100, 100, 200, 300)},
		{Name: "Character_04", Box2D: box(0, 0, 1024, 1024)},
	}

	require.NoError(t, WriteLabels(path, Labels(dets, DefaultDimension)))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1 0.146 0.195 0.098 0.195\n1 0.500 0.500 1.000 1.000\n", string(b))

	t.Run("second write replaces", func(t *testing.T) {
		require.NoError(t, WriteLabels(path, Labels(dets[1:], DefaultDimension)))
		b, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "1 0.500 0.500 1.000 1.000\n", string(b))
	})
	t.Run("empty list truncates", func(t *testing.T) {
		require.NoError(t, WriteLabels(path, nil))
		b, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Empty(t, b)
	})
	t.Run("missing directory", func(t *testing.T) {
		assert.Error(t, WriteLabels(filepath.Join(t.TempDir(), "nope", "x.txt"), nil))
	})
}
