// Package capture sequences the simulator through a dataset capture run.
package capture

import (
	iface "SimCapture/interface"
	"SimCapture/logger"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
)

const (
	DefaultCamera    = "3"
	DefaultFov       = 87.0
	DefaultDirCount  = 4
	DefaultMeshMatch = "*"
	// DefaultFilterRadiusCm bounds the detection query around the camera.
	DefaultFilterRadiusCm = 80000.0
)

// Session is the live simulator handle passed to every stage.
type Session struct {
	Sim    iface.Simulator
	Camera string
	Fov    float64
}

// SetupSession confirms the simulator is live and sets the capture camera's
// field of view. Any failure is fatal to the run.
func SetupSession(ctx context.Context, sim iface.Simulator, camera string, fov float64) (*Session, error) {
	if err := sim.ConfirmConnection(ctx); err != nil {
		return nil, err
	}
	if err := sim.SetCameraFov(ctx, camera, fov); err != nil {
		return nil, fmt.Errorf("set camera %s fov: %w", camera, err)
	}
	logger.Stage("setup").Info("Camera field of view set", zap.String("camera", camera), zap.Float64("fov", fov))
	return &Session{Sim: sim, Camera: camera, Fov: fov}, nil
}

// PrepareOutputDirs creates base/0 .. base/n-1. Existing directories are fine.
func PrepareOutputDirs(base string, n int) error {
	for i := 0; i < n; i++ {
		dir := filepath.Join(base, strconv.Itoa(i))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	return nil
}

// ConfigureDetections limits detections on the session camera's scene pass
// to radiusCm and to meshes matching meshName.
func ConfigureDetections(ctx context.Context, s *Session, radiusCm float64, meshName string) error {
	if err := s.Sim.SetDetectionFilterRadius(ctx, s.Camera, iface.Scene, radiusCm); err != nil {
		return fmt.Errorf("set detection filter radius: %w", err)
	}
	if err := s.Sim.AddDetectionFilterMeshName(ctx, s.Camera, iface.Scene, meshName); err != nil {
		return fmt.Errorf("add detection mesh filter: %w", err)
	}
	return nil
}

// ResetPose teleports the vehicle back to the origin. Computer-vision mode
// has no reset call, so this stands in for one.
func ResetPose(ctx context.Context, s *Session) error {
	origin := iface.Pose{Orientation: iface.ToQuaternion(0, 0, 0)}
	if err := s.Sim.SetVehiclePose(ctx, origin, true); err != nil {
		return fmt.Errorf("reset vehicle pose: %w", err)
	}
	return nil
}
