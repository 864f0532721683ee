package capture

import (
	iface "SimCapture/interface"
	"SimCapture/logger"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

const (
	DefaultIterations     = 12
	DefaultTeleportSettle = 100 * time.Millisecond
)

// PoseBase is the position of iteration 0. Later iterations step along x.
type PoseBase struct {
	X, Y, Z float64
}

var DefaultPoseBase = PoseBase{X: 90, Y: -20, Z: -30}

// PoseForIteration places the vehicle at (X+i, Y, Z) with zero roll, pitch and yaw.
func (b PoseBase) PoseForIteration(i int) iface.Pose {
	return iface.Pose{
		Position:    iface.Vector3r{X: b.X + float64(i), Y: b.Y, Z: b.Z},
		Orientation: iface.ToQuaternion(0, 0, 0),
	}
}

// Observer is told about every frame that was persisted.
type Observer interface {
	FrameCaptured(iteration, detections int)
}

// Capturer runs the pose/capture/persist loop.
type Capturer struct {
	Session        *Session
	Sink           iface.FrameSink
	Base           PoseBase
	Iterations     int
	TeleportSettle time.Duration
	Clock          clock.Clock
	Observers      []Observer
}

func (c *Capturer) requests() []iface.ImageRequest {
	return []iface.ImageRequest{
		{CameraName: c.Session.Camera, ImageType: iface.Scene},
		{CameraName: c.Session.Camera, ImageType: iface.Segmentation},
	}
}

// Run captures Iterations frames in order and returns how many were
// persisted. The first failure stops the loop; the simulation is left as the
// failing step found it.
func (c *Capturer) Run(ctx context.Context) (int, error) {
	if c.Session == nil || c.Sink == nil {
		return 0, errors.New("capturer needs a session and a frame sink")
	}
	clk := c.Clock
	if clk == nil {
		clk = clock.New()
	}
	log := logger.Stage("capture")
	sim := c.Session.Sim

	for i := 0; i < c.Iterations; i++ {
		if err := sim.SetVehiclePose(ctx, c.Base.PoseForIteration(i), true); err != nil {
			return i, fmt.Errorf("iteration %d: set vehicle pose: %w", i, err)
		}
		clk.Sleep(c.TeleportSettle)

		if err := sim.Pause(ctx, true); err != nil {
			return i, fmt.Errorf("iteration %d: pause: %w", i, err)
		}
		responses, err := sim.GetImages(ctx, c.requests())
		if err != nil {
			return i, fmt.Errorf("iteration %d: get images: %w", i, err)
		}
		dets, err := sim.GetDetections(ctx, c.Session.Camera, iface.Scene)
		if err != nil {
			return i, fmt.Errorf("iteration %d: get detections: %w", i, err)
		}
		log.Info("Frame captured", zap.Int("iteration", i), zap.Int("images", len(responses)), zap.Int("detections", len(dets)))

		frame := iface.Frame{Iteration: i, Responses: responses, Detections: dets}
		if err := c.Sink.WriteFrame(ctx, frame); err != nil {
			return i, fmt.Errorf("iteration %d: persist frame: %w", i, err)
		}
		if err := sim.Pause(ctx, false); err != nil {
			return i + 1, fmt.Errorf("iteration %d: resume: %w", i, err)
		}
		for _, o := range c.Observers {
			o.FrameCaptured(i, len(dets))
		}
	}
	return c.Iterations, nil
}
