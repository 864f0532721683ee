package main

import (
	Adhoc "SimCapture/Adhoc"
	"SimCapture/capture"
	"SimCapture/engine"
	"SimCapture/imageio"
	"SimCapture/logger"
	"SimCapture/monitor"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

const configPath = "config.yaml"

func main() {
	config, err := loadConfig(configPath)
	if err != nil {
		fmt.Println("Failed to read config file:", err)
		os.Exit(1)
	}
	if err := logger.Init(config.LogMode, config.LogLevel); err != nil {
		fmt.Println("Failed to init logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()
	for _, w := range config.sanitize() {
		logger.Log().Warn("Invalid config value", zap.String("detail", w))
	}
	config.log()

	if err := run(context.Background(), config); err != nil {
		logger.Log().Error("Capture run failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	fmt.Println("Done")
}

func run(ctx context.Context, config configStruct) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Println(strings.Repeat("#", 64))
	fmt.Println("Saving images to", config.OutputDir)
	fmt.Println(strings.Repeat("#", 64))
	if err := capture.PrepareOutputDirs(config.OutputDir, config.OutputDirCount); err != nil {
		return err
	}

	mon := monitor.New()
	if config.MonitorPort > 0 {
		go mon.Start(ctx, config.MonitorPort)
	} else {
		logger.Log().Info("monitorPort is 0, skipping monitor server")
	}

	client, err := engine.Dial(ctx, config.SimHost, config.SimPort)
	if err != nil {
		return err
	}
	defer client.Close()
	client.VehicleName = config.VehicleName

	session, err := capture.SetupSession(ctx, client, config.Camera, config.CameraFov)
	if err != nil {
		return err
	}

	if err := gate(config, "Press any key to get camera parameters"); err != nil {
		return err
	}
	for _, id := range config.InspectCameras {
		info, err := client.GetCameraInfo(ctx, id)
		if err != nil {
			return fmt.Errorf("camera %s info: %w", id, err)
		}
		renderCameraInfo(os.Stdout, id, info)
	}
	if err := gate(config, "Press any key to get images"); err != nil {
		return err
	}

	for _, a := range capture.AssignSegmentationIDs(ctx, session, config.ObjectNames, config.segmentSettle(), nil) {
		mon.SegmentationAssigned(a.Name, a.ID, a.Matched)
	}
	if err := capture.ConfigureDetections(ctx, session, config.DetectionRadiusCm, config.DetectionMesh); err != nil {
		return err
	}

	capturer := &capture.Capturer{
		Session:        session,
		Sink:           imageio.NewWriter(config.OutputDir, config.ObjectNames),
		Base:           config.poseBase(),
		Iterations:     config.Iterations,
		TeleportSettle: config.teleportSettle(),
		Observers:      []capture.Observer{mon},
	}

	var reporter *Adhoc.Reporter
	if config.UseRegServer {
		regCfg := Adhoc.RegServerConfig{}
		regCfg.SetAddress(config.RegServerHost, config.RegServerPort)
		reporter = Adhoc.NewReporter(regCfg)
		reporter.Start(ctx, config.OutputDir, config.Iterations, config.ObjectNames)
		capturer.Observers = append(capturer.Observers, reporter)
	} else {
		logger.Log().Info("UseRegServer is set to false, skipping registration")
	}
	mon.Begin(runID(reporter), config.Iterations)

	frames, err := capturer.Run(ctx)
	mon.Finish(err)
	if reporter != nil {
		reporter.Finish(ctx, frames, err)
	}
	if err != nil {
		return err
	}
	logger.Log().Info("Capture finished", zap.Int("frames", frames))

	return capture.ResetPose(ctx, session)
}

func gate(config configStruct, title string) error {
	if !config.Interactive {
		return nil
	}
	if err := waitKey(title); err != nil {
		if errors.Is(err, errAborted) {
			logger.Log().Info("Run aborted at prompt", zap.String("prompt", title))
		}
		return err
	}
	return nil
}

func runID(r *Adhoc.Reporter) string {
	if r == nil {
		return ""
	}
	return r.RunID
}
