package iface

import "context"

// Simulator is the request/response surface of the simulator client.
type Simulator interface {
	ConfirmConnection(ctx context.Context) error
	SetCameraFov(ctx context.Context, camera string, fovDegrees float64) error
	GetCameraInfo(ctx context.Context, camera string) (CameraInfo, error)
	SetSegmentationObjectID(ctx context.Context, pattern string, id int, isRegex bool) (bool, error)
	SetVehiclePose(ctx context.Context, pose Pose, ignoreCollision bool) error
	Pause(ctx context.Context, paused bool) error
	GetImages(ctx context.Context, requests []ImageRequest) ([]ImageResponse, error)
	GetDetections(ctx context.Context, camera string, imageType ImageType) ([]DetectionInfo, error)
	SetDetectionFilterRadius(ctx context.Context, camera string, imageType ImageType, radiusCm float64) error
	AddDetectionFilterMeshName(ctx context.Context, camera string, imageType ImageType, meshName string) error
	Close() error
}

// FrameSink persists one captured frame.
type FrameSink interface {
	WriteFrame(ctx context.Context, frame Frame) error
}
