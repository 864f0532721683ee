package capture

import (
	iface "SimCapture/interface"
	"context"
	"fmt"
	"sync"
)

type call struct {
	Method string
	Args   []any
}

type MockSimulator struct {
	mu    sync.Mutex
	calls []call

	PingErr    error
	FovErr     error
	Matches    map[string]bool
	SegErr     map[string]error
	Detections []iface.DetectionInfo
	ImagesErr  error
	FailPoseAt int
	poseCalls  int
	paused     bool
	pausedSeen []bool
}

func NewMockSimulator() *MockSimulator {
	return &MockSimulator{Matches: map[string]bool{}, SegErr: map[string]error{}, FailPoseAt: -1}
}

func (m *MockSimulator) record(method string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call{Method: method, Args: args})
}

func (m *MockSimulator) Calls() []call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]call(nil), m.calls...)
}

func (m *MockSimulator) Methods() []string {
	var out []string
	for _, c := range m.Calls() {
		out = append(out, c.Method)
	}
	return out
}

func (m *MockSimulator) CallsTo(method string) []call {
	var out []call
	for _, c := range m.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (m *MockSimulator) ConfirmConnection(ctx context.Context) error {
	m.record("ConfirmConnection")
	return m.PingErr
}

func (m *MockSimulator) SetCameraFov(ctx context.Context, camera string, fov float64) error {
	m.record("SetCameraFov", camera, fov)
	return m.FovErr
}

func (m *MockSimulator) GetCameraInfo(ctx context.Context, camera string) (iface.CameraInfo, error) {
	m.record("GetCameraInfo", camera)
	return iface.CameraInfo{Fov: 90}, nil
}

func (m *MockSimulator) SetSegmentationObjectID(ctx context.Context, pattern string, id int, isRegex bool) (bool, error) {
	m.record("SetSegmentationObjectID", pattern, id, isRegex)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Matches[pattern], m.SegErr[pattern]
}

func (m *MockSimulator) SetVehiclePose(ctx context.Context, pose iface.Pose, ignoreCollision bool) error {
	m.record("SetVehiclePose", pose, ignoreCollision)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.poseCalls
	m.poseCalls++
	if n == m.FailPoseAt {
		return fmt.Errorf("pose %d rejected", n)
	}
	return nil
}

func (m *MockSimulator) Pause(ctx context.Context, paused bool) error {
	m.record("Pause", paused)
	m.mu.Lock()
	m.paused = paused
	m.mu.Unlock()
	return nil
}

func (m *MockSimulator) GetImages(ctx context.Context, requests []iface.ImageRequest) ([]iface.ImageResponse, error) {
	m.record("GetImages", requests)
	m.mu.Lock()
	m.pausedSeen = append(m.pausedSeen, m.paused)
	m.mu.Unlock()
	if m.ImagesErr != nil {
		return nil, m.ImagesErr
	}
	out := make([]iface.ImageResponse, len(requests))
	for i, r := range requests {
		out[i] = iface.ImageResponse{ImageType: r.ImageType, Width: 2, Height: 2, ImageDataUint8: make([]byte, 12)}
	}
	return out, nil
}

func (m *MockSimulator) GetDetections(ctx context.Context, camera string, imageType iface.ImageType) ([]iface.DetectionInfo, error) {
	m.record("GetDetections", camera, imageType)
	return m.Detections, nil
}

func (m *MockSimulator) SetDetectionFilterRadius(ctx context.Context, camera string, imageType iface.ImageType, radiusCm float64) error {
	m.record("SetDetectionFilterRadius", camera, imageType, radiusCm)
	return nil
}

func (m *MockSimulator) AddDetectionFilterMeshName(ctx context.Context, camera string, imageType iface.ImageType, meshName string) error {
	m.record("AddDetectionFilterMeshName", camera, imageType, meshName)
	return nil
}

func (m *MockSimulator) Close() error {
	m.record("Close")
	return nil
}

// MockSink records frames and, while the simulation is paused, notes it
// against the owning simulator.
type MockSink struct {
	sim     *MockSimulator
	Frames  []iface.Frame
	Paused  []bool
	FailAt  int
	OnWrite func(iface.Frame) error
}

func (s *MockSink) WriteFrame(ctx context.Context, frame iface.Frame) error {
	s.sim.record("WriteFrame", frame.Iteration)
	s.sim.mu.Lock()
	s.Paused = append(s.Paused, s.sim.paused)
	s.sim.mu.Unlock()
	if frame.Iteration == s.FailAt {
		return fmt.Errorf("disk full")
	}
	s.Frames = append(s.Frames, frame)
	if s.OnWrite != nil {
		return s.OnWrite(frame)
	}
	return nil
}

type countingObserver struct {
	iterations []int
	detections int
}

func (o *countingObserver) FrameCaptured(iteration, detections int) {
	o.iterations = append(o.iterations, iteration)
	o.detections += detections
}
