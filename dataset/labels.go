package dataset

import (
	iface "SimCapture/interface"
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/multierr"
)

const (
	// ClassID is written for every box; the dataset has one class.
	ClassID = "1"
	// DefaultDimension is the image side length boxes are normalized by. It is
	// not read from the captured image.
	DefaultDimension = 1024
)

// BoundingBoxLabel is one line of a frame's label file.
type BoundingBoxLabel struct {
	Class string
	CX    float64
	CY    float64
	W     float64
	H     float64
}

// round3 rounds the exact binary value to three decimals, ties to even.
func round3(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 3, 64), 64)
	return r
}

// Normalize converts box corners into center/size fractions of dim.
func Normalize(box iface.Box2D, dim float64) BoundingBoxLabel {
	return BoundingBoxLabel{
		Class: ClassID,
		CX:    round3((box.Min.X + box.Max.X) / 2 / dim),
		CY:    round3((box.Min.Y + box.Max.Y) / 2 / dim),
		W:     round3((box.Max.X - box.Min.X) / dim),
		H:     round3((box.Max.Y - box.Min.Y) / dim),
	}
}

func (b BoundingBoxLabel) String() string {
	return fmt.Sprintf("%s %.3f %.3f %.3f %.3f", b.Class, b.CX, b.CY, b.W, b.H)
}

// Matches reports whether name contains any of the filter substrings.
func Matches(name string, filters []string) bool {
	for _, f := range filters {
		if strings.Contains(name, f) {
			return true
		}
	}
	return false
}

// Filter keeps detections matching any filter, preserving order. A detection
// matching several filters is kept once.
func Filter(dets []iface.DetectionInfo, filters []string) []iface.DetectionInfo {
	kept := make([]iface.DetectionInfo, 0, len(dets))
	for _, d := range dets {
		if Matches(d.Name, filters) {
			kept = append(kept, d)
		}
	}
	return kept
}

func Labels(dets []iface.DetectionInfo, dim float64) []BoundingBoxLabel {
	labels := make([]BoundingBoxLabel, len(dets))
	for i, d := range dets {
		labels[i] = Normalize(d.Box2D, dim)
	}
	return labels
}

// WriteLabels replaces path with one line per label.
func WriteLabels(path string, labels []BoundingBoxLabel) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create label file: %w", err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	w := bufio.NewWriter(f)
	for _, l := range labels {
		if _, err := w.WriteString(l.String() + "\n"); err != nil {
			return fmt.Errorf("write label file: %w", err)
		}
	}
	return w.Flush()
}
