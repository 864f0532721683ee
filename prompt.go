package main

import (
	iface "SimCapture/interface"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/jedib0t/go-pretty/v6/table"
)

var errAborted = errors.New("aborted at prompt")

// waitKey blocks on a confirm prompt. Declining aborts the run.
func waitKey(title string) error {
	proceed := true
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Continue").
		Negative("Abort").
		Value(&proceed).
		Run()
	if err != nil {
		return err
	}
	if !proceed {
		return errAborted
	}
	return nil
}

func renderCameraInfo(w io.Writer, camera string, info iface.CameraInfo) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("CameraInfo %s", camera)
	t.AppendHeader(table.Row{"Field", "Value"})
	p := info.Pose.Position
	o := info.Pose.Orientation
	t.AppendRow(table.Row{"position", fmt.Sprintf("x=%.3f y=%.3f z=%.3f", p.X, p.Y, p.Z)})
	t.AppendRow(table.Row{"orientation", fmt.Sprintf("w=%.4f x=%.4f y=%.4f z=%.4f", o.W, o.X, o.Y, o.Z)})
	t.AppendRow(table.Row{"fov", fmt.Sprintf("%.2f", info.Fov)})
	for i, row := range info.ProjMat.Matrix {
		t.AppendRow(table.Row{fmt.Sprintf("proj_mat[%d]", i), fmt.Sprint(row)})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}
