package iface

import "math"

// ImageType selects which render pass a camera returns.
type ImageType int

const (
	Scene ImageType = iota
	DepthPlanar
	DepthPerspective
	DepthVis
	DisparityNormalized
	Segmentation
	SurfaceNormals
	Infrared
	OpticalFlow
	OpticalFlowVis
)

func (t ImageType) String() string {
	switch t {
	case Scene:
		return "Scene"
	case DepthPlanar:
		return "DepthPlanar"
	case DepthPerspective:
		return "DepthPerspective"
	case DepthVis:
		return "DepthVis"
	case DisparityNormalized:
		return "DisparityNormalized"
	case Segmentation:
		return "Segmentation"
	case SurfaceNormals:
		return "SurfaceNormals"
	case Infrared:
		return "Infrared"
	case OpticalFlow:
		return "OpticalFlow"
	case OpticalFlowVis:
		return "OpticalFlowVis"
	}
	return "Unknown"
}

type Vector2r struct {
	X float64 `msgpack:"x_val"`
	Y float64 `msgpack:"y_val"`
}

type Vector3r struct {
	X float64 `msgpack:"x_val"`
	Y float64 `msgpack:"y_val"`
	Z float64 `msgpack:"z_val"`
}

type Quaternionr struct {
	W float64 `msgpack:"w_val"`
	X float64 `msgpack:"x_val"`
	Y float64 `msgpack:"y_val"`
	Z float64 `msgpack:"z_val"`
}

type Pose struct {
	Position    Vector3r    `msgpack:"position"`
	Orientation Quaternionr `msgpack:"orientation"`
}

// ToQuaternion converts pitch, roll and yaw in radians.
func ToQuaternion(pitch, roll, yaw float64) Quaternionr {
	t0 := math.Cos(yaw * 0.5)
	t1 := math.Sin(yaw * 0.5)
	t2 := math.Cos(roll * 0.5)
	t3 := math.Sin(roll * 0.5)
	t4 := math.Cos(pitch * 0.5)
	t5 := math.Sin(pitch * 0.5)
	return Quaternionr{
		W: t0*t2*t4 + t1*t3*t5,
		X: t0*t3*t4 - t1*t2*t5,
		Y: t0*t2*t5 + t1*t3*t4,
		Z: t1*t2*t4 - t0*t3*t5,
	}
}

type ImageRequest struct {
	CameraName    string    `msgpack:"camera_name"`
	ImageType     ImageType `msgpack:"image_type"`
	PixelsAsFloat bool      `msgpack:"pixels_as_float"`
	Compress      bool      `msgpack:"compress"`
}

type ImageResponse struct {
	ImageDataUint8    []byte      `msgpack:"image_data_uint8"`
	ImageDataFloat    []float32   `msgpack:"image_data_float"`
	CameraPosition    Vector3r    `msgpack:"camera_position"`
	CameraOrientation Quaternionr `msgpack:"camera_orientation"`
	TimeStamp         uint64      `msgpack:"time_stamp"`
	Message           string      `msgpack:"message"`
	PixelsAsFloat     bool        `msgpack:"pixels_as_float"`
	Compress          bool        `msgpack:"compress"`
	Width             int         `msgpack:"width"`
	Height            int         `msgpack:"height"`
	ImageType         ImageType   `msgpack:"image_type"`
}

type Box2D struct {
	Min Vector2r `msgpack:"min"`
	Max Vector2r `msgpack:"max"`
}

type Box3D struct {
	Min Vector3r `msgpack:"min"`
	Max Vector3r `msgpack:"max"`
}

type GeoPoint struct {
	Latitude  float64 `msgpack:"latitude"`
	Longitude float64 `msgpack:"longitude"`
	Altitude  float64 `msgpack:"altitude"`
}

// DetectionInfo is one object the simulator reports as visible to a camera.
type DetectionInfo struct {
	Name         string   `msgpack:"name"`
	GeoPoint     GeoPoint `msgpack:"geo_point"`
	Box2D        Box2D    `msgpack:"box2D"`
	Box3D        Box3D    `msgpack:"box3D"`
	RelativePose Pose     `msgpack:"relative_pose"`
}

type ProjectionMatrix struct {
	Matrix [][]float64 `msgpack:"matrix"`
}

type CameraInfo struct {
	Pose    Pose             `msgpack:"pose"`
	Fov     float64          `msgpack:"fov"`
	ProjMat ProjectionMatrix `msgpack:"proj_mat"`
}

// Frame is everything captured for one iteration while the simulation was paused.
type Frame struct {
	Iteration  int
	Responses  []ImageResponse
	Detections []DetectionInfo
}
