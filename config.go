package main

import (
	"SimCapture/capture"
	"SimCapture/engine"
	"SimCapture/logger"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type configStruct struct {
	SimHost     string `yaml:"simHost"`
	SimPort     int    `yaml:"simPort"`
	VehicleName string `yaml:"vehicleName"`

	Camera         string   `yaml:"camera"`
	CameraFov      float64  `yaml:"cameraFov"`
	InspectCameras []string `yaml:"inspectCameras"`

	OutputDir      string   `yaml:"outputDir"`
	OutputDirCount int      `yaml:"outputDirCount"`
	ObjectNames    []string `yaml:"objectNames"`

	Iterations       int     `yaml:"iterations"`
	BaseX            float64 `yaml:"baseX"`
	BaseY            float64 `yaml:"baseY"`
	BaseZ            float64 `yaml:"baseZ"`
	SegmentSettleMs  int     `yaml:"segmentSettleMs"`
	TeleportSettleMs int     `yaml:"teleportSettleMs"`

	DetectionRadiusCm float64 `yaml:"detectionRadiusCm"`
	DetectionMesh     string  `yaml:"detectionMesh"`

	Interactive bool   `yaml:"interactive"`
	LogMode     string `yaml:"logMode"`
	LogLevel    string `yaml:"logLevel"`

	MonitorPort   int    `yaml:"monitorPort"`
	UseRegServer  bool   `yaml:"UseRegServer"`
	RegServerHost string `yaml:"RegServerHost"`
	RegServerPort int    `yaml:"RegServerPort"`
}

func defaultConfig() configStruct {
	return configStruct{
		SimHost:           engine.DefaultHost,
		SimPort:           engine.DefaultPort,
		Camera:            capture.DefaultCamera,
		CameraFov:         capture.DefaultFov,
		InspectCameras:    []string{"0", "1"},
		OutputDir:         filepath.Join(os.TempDir(), "airsim_drone"),
		OutputDirCount:    capture.DefaultDirCount,
		ObjectNames:       []string{"Character"},
		Iterations:        capture.DefaultIterations,
		BaseX:             capture.DefaultPoseBase.X,
		BaseY:             capture.DefaultPoseBase.Y,
		BaseZ:             capture.DefaultPoseBase.Z,
		SegmentSettleMs:   int(capture.DefaultSegmentationSettle / time.Millisecond),
		TeleportSettleMs:  int(capture.DefaultTeleportSettle / time.Millisecond),
		DetectionRadiusCm: capture.DefaultFilterRadiusCm,
		DetectionMesh:     capture.DefaultMeshMatch,
		Interactive:       true,
		LogMode:           "production",
	}
}

// loadConfig overlays path on the defaults. A missing file is not an error.
func loadConfig(path string) (configStruct, error) {
	config := defaultConfig()
	configData, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return config, err
	}
	if err := yaml.Unmarshal(configData, &config); err != nil {
		return config, err
	}
	return config, nil
}

// sanitize puts unusable values back to their defaults and returns a warning
// for each one it changed.
func (c *configStruct) sanitize() []string {
	def := defaultConfig()
	var warnings []string
	if c.Camera == "" {
		c.Camera = def.Camera
		warnings = append(warnings, "empty camera, defaulting to "+def.Camera)
	}
	if c.CameraFov <= 0 || c.CameraFov >= 180 {
		c.CameraFov = def.CameraFov
		warnings = append(warnings, "cameraFov out of range, defaulting to 87")
	}
	if c.OutputDir == "" {
		c.OutputDir = def.OutputDir
	}
	if c.OutputDirCount < 1 {
		c.OutputDirCount = def.OutputDirCount
		warnings = append(warnings, "outputDirCount below 1, defaulting to 4")
	}
	if c.Iterations < 0 {
		c.Iterations = def.Iterations
		warnings = append(warnings, "negative iterations, defaulting to 12")
	}
	if c.SegmentSettleMs < 0 {
		c.SegmentSettleMs = def.SegmentSettleMs
		warnings = append(warnings, "negative segmentSettleMs, defaulting to 1000")
	}
	if c.TeleportSettleMs < 0 {
		c.TeleportSettleMs = def.TeleportSettleMs
		warnings = append(warnings, "negative teleportSettleMs, defaulting to 100")
	}
	return warnings
}

func (c configStruct) segmentSettle() time.Duration {
	return time.Duration(c.SegmentSettleMs) * time.Millisecond
}

func (c configStruct) teleportSettle() time.Duration {
	return time.Duration(c.TeleportSettleMs) * time.Millisecond
}

func (c configStruct) poseBase() capture.PoseBase {
	return capture.PoseBase{X: c.BaseX, Y: c.BaseY, Z: c.BaseZ}
}

func (c configStruct) log() {
	logger.Log().Info("Configuration",
		zap.String("simulator", c.SimHost),
		zap.Int("port", c.SimPort),
		zap.String("camera", c.Camera),
		zap.Float64("fov", c.CameraFov),
		zap.String("outputDir", c.OutputDir),
		zap.Int("iterations", c.Iterations),
		zap.Strings("objectNames", c.ObjectNames))
}
