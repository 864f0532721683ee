// Package imageio turns simulator image responses into files and draws
// detection annotations with OpenCV.
package imageio

import (
	"SimCapture/dataset"
	iface "SimCapture/interface"
	"SimCapture/logger"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

var BoxColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}

var _ iface.FrameSink = (*Writer)(nil)

// Writer persists frames under Layout, annotating and labelling detections
// whose names contain any of Filters.
type Writer struct {
	Layout    dataset.Layout
	Filters   []string
	Dimension float64
	Color     color.RGBA
}

func NewWriter(base string, filters []string) *Writer {
	return &Writer{
		Layout:    dataset.Layout{Base: base},
		Filters:   filters,
		Dimension: dataset.DefaultDimension,
		Color:     BoxColor,
	}
}

// WriteFrame writes the raw images, the annotated copy of the scene image and
// the label file for one frame.
func (w *Writer) WriteFrame(ctx context.Context, frame iface.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	paths := w.Layout.Frame(frame.Iteration)
	for _, resp := range frame.Responses {
		if resp.PixelsAsFloat {
			logger.Log().Info("Float image response",
				zap.Stringer("type", resp.ImageType),
				zap.Int("size", len(resp.ImageDataFloat)))
			if err := WritePFM(paths.Float, resp); err != nil {
				return err
			}
			continue
		}
		path := paths.Seg
		if resp.ImageType == iface.Scene {
			path = paths.Orig
		}
		if err := WriteRaster(path, resp); err != nil {
			return err
		}
	}

	kept := dataset.Filter(frame.Detections, w.Filters)
	if err := Annotate(paths.Orig, paths.Annot, kept, w.Color); err != nil {
		return err
	}
	if err := dataset.WriteLabels(paths.Labels, dataset.Labels(kept, w.Dimension)); err != nil {
		return err
	}
	logger.Log().Debug("Frame written", zap.String("stem", paths.Stem), zap.Int("labels", len(kept)))
	return nil
}

// MatFromResponse wraps uncompressed 3-channel 8-bit pixel data.
func MatFromResponse(resp iface.ImageResponse) (gocv.Mat, error) {
	want := resp.Width * resp.Height * 3
	if resp.Width <= 0 || resp.Height <= 0 {
		return gocv.NewMat(), fmt.Errorf("%s image has no size (%dx%d)", resp.ImageType, resp.Width, resp.Height)
	}
	if len(resp.ImageDataUint8) != want {
		return gocv.NewMat(), fmt.Errorf("%s image is %d bytes, want %d for %dx%dx3", resp.ImageType, len(resp.ImageDataUint8), want, resp.Width, resp.Height)
	}
	return gocv.NewMatFromBytes(resp.Height, resp.Width, gocv.MatTypeCV8UC3, resp.ImageDataUint8)
}

// FloatMatFromResponse wraps single-channel float data such as depth.
func FloatMatFromResponse(resp iface.ImageResponse) (gocv.Mat, error) {
	n := resp.Width * resp.Height
	if n <= 0 || len(resp.ImageDataFloat) != n {
		return gocv.NewMat(), fmt.Errorf("%s float image has %d values, want %d", resp.ImageType, len(resp.ImageDataFloat), n)
	}
	buf := make([]byte, 4*n)
	for i, v := range resp.ImageDataFloat {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return gocv.NewMatFromBytes(resp.Height, resp.Width, gocv.MatTypeCV32FC1, buf)
}

func WriteRaster(path string, resp iface.ImageResponse) (err error) {
	mat, err := MatFromResponse(resp)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, mat.Close())
	}()
	if !gocv.IMWrite(path, mat) {
		return fmt.Errorf("write %s", path)
	}
	return nil
}

func WritePFM(path string, resp iface.ImageResponse) (err error) {
	mat, err := FloatMatFromResponse(resp)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, mat.Close())
	}()
	if !gocv.IMWrite(path, mat) {
		return fmt.Errorf("write %s", path)
	}
	return nil
}

// Annotate draws each detection's box and name onto a copy of src saved as dst.
func Annotate(src, dst string, dets []iface.DetectionInfo, c color.RGBA) (err error) {
	img := gocv.IMRead(src, gocv.IMReadColor)
	defer func() {
		err = multierr.Append(err, img.Close())
	}()
	if img.Empty() {
		return errors.New("annotate: cannot read " + src)
	}
	for _, d := range dets {
		rect := image.Rect(int(d.Box2D.Min.X), int(d.Box2D.Min.Y), int(d.Box2D.Max.X), int(d.Box2D.Max.Y))
		gocv.Rectangle(&img, rect, c, 1)
		// PutText anchors at the baseline; shift so the name sits inside the box
		size := gocv.GetTextSize(d.Name, gocv.FontHersheyPlain, 1, 1)
		gocv.PutText(&img, d.Name, rect.Min.Add(image.Pt(0, size.Y)), gocv.FontHersheyPlain, 1, c, 1)
	}
	if !gocv.IMWrite(dst, img) {
		return fmt.Errorf("write %s", dst)
	}
	return nil
}
