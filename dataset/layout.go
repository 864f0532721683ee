// Package dataset holds the on-disk rules of the capture dataset: where a
// frame's files live and how bounding boxes become label lines.
package dataset

import (
	"fmt"
	"path/filepath"
)

// FrameShard is the subdirectory every frame is written to. Sibling
// directories are created by PrepareOutputDirs but stay empty.
const FrameShard = "0"

const (
	OrigSuffix   = "_orig.jpg"
	SegSuffix    = "_seg.jpg"
	AnnotSuffix  = "_annot.jpg"
	FloatSuffix  = ".pfm"
	LabelsSuffix = ".txt"
)

// OutputFrame names the artifacts of one capture iteration.
type OutputFrame struct {
	Stem   string
	Orig   string
	Seg    string
	Annot  string
	Float  string
	Labels string
}

type Layout struct {
	Base string
}

// Stem is the shared file prefix for iteration, e.g. <base>/0/7_0.
func (l Layout) Stem(iteration int) string {
	return filepath.Clean(filepath.Join(l.Base, FrameShard, fmt.Sprintf("%d_0", iteration)))
}

func (l Layout) Frame(iteration int) OutputFrame {
	stem := l.Stem(iteration)
	return OutputFrame{
		Stem:   stem,
		Orig:   stem + OrigSuffix,
		Seg:    stem + SegSuffix,
		Annot:  stem + AnnotSuffix,
		Float:  stem + FloatSuffix,
		Labels: stem + LabelsSuffix,
	}
}
