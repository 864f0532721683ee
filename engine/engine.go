package engine

import (
	iface "SimCapture/interface"
	"SimCapture/logger"
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

// Client talks to the simulator's msgpack-rpc endpoint.
type Client struct {
	Addr        string
	VehicleName string
	State       int

	mu   sync.Mutex
	conn *conn
}

var _ iface.Simulator = (*Client)(nil)

// Dial opens the RPC connection. It does not check that the simulator is
// responsive; call ConfirmConnection for that.
func Dial(ctx context.Context, host string, port int) (*Client, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial simulator at %s: %w", addr, err)
	}
	logger.Log().Info("Connected to simulator", zap.String("addr", addr))
	return &Client{
		Addr:  addr,
		State: CONNECTED,
		conn:  newConn(nc),
	}, nil
}

func (c *Client) call(ctx context.Context, method string, out any, args ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.State != CONNECTED {
		return ErrNotConnected
	}
	return c.conn.call(ctx, method, out, args...)
}

func (c *Client) Ping(ctx context.Context) (bool, error) {
	var ok bool
	err := c.call(ctx, "ping", &ok)
	return ok, err
}

func (c *Client) ServerVersion(ctx context.Context) (int, error) {
	var v int
	err := c.call(ctx, "getServerVersion", &v)
	return v, err
}

func (c *Client) MinRequiredClientVersion(ctx context.Context) (int, error) {
	var v int
	err := c.call(ctx, "getMinRequiredClientVersion", &v)
	return v, err
}

// ConfirmConnection pings the simulator and compares protocol versions.
// Version mismatches are logged, not returned.
func (c *Client) ConfirmConnection(ctx context.Context) error {
	ok, err := c.Ping(ctx)
	if err != nil {
		return fmt.Errorf("confirm connection: %w", err)
	}
	if !ok {
		return ErrPingFailed
	}
	serverVer, err := c.ServerVersion(ctx)
	if err != nil {
		return fmt.Errorf("confirm connection: %w", err)
	}
	minClientVer, err := c.MinRequiredClientVersion(ctx)
	if err != nil {
		return fmt.Errorf("confirm connection: %w", err)
	}
	logger.Log().Info("Simulator connection confirmed",
		zap.Int("clientVersion", ClientVersion),
		zap.Int("serverVersion", serverVer),
		zap.Int("minRequiredClientVersion", minClientVer))
	if serverVer < MinServerVersion {
		logger.Log().Warn("Simulator server is older than this client supports, please upgrade the server")
	} else if ClientVersion < minClientVer {
		logger.Log().Warn("Client is older than the simulator server requires, please upgrade the client")
	}
	return nil
}

func (c *Client) SetCameraFov(ctx context.Context, camera string, fovDegrees float64) error {
	return c.call(ctx, "simSetCameraFov", nil, camera, fovDegrees, c.VehicleName, false)
}

func (c *Client) GetCameraInfo(ctx context.Context, camera string) (iface.CameraInfo, error) {
	var info iface.CameraInfo
	err := c.call(ctx, "simGetCameraInfo", &info, camera, c.VehicleName, false)
	return info, err
}

// SetSegmentationObjectID reports whether any scene object matched pattern.
func (c *Client) SetSegmentationObjectID(ctx context.Context, pattern string, id int, isRegex bool) (bool, error) {
	var found bool
	err := c.call(ctx, "simSetSegmentationObjectID", &found, pattern, id, isRegex)
	return found, err
}

func (c *Client) SetVehiclePose(ctx context.Context, pose iface.Pose, ignoreCollision bool) error {
	return c.call(ctx, "simSetVehiclePose", nil, pose, ignoreCollision, c.VehicleName)
}

func (c *Client) Pause(ctx context.Context, paused bool) error {
	return c.call(ctx, "simPause", nil, paused)
}

func (c *Client) GetImages(ctx context.Context, requests []iface.ImageRequest) ([]iface.ImageResponse, error) {
	var responses []iface.ImageResponse
	if err := c.call(ctx, "simGetImages", &responses, requests, c.VehicleName, false); err != nil {
		return nil, err
	}
	return responses, nil
}

func (c *Client) GetDetections(ctx context.Context, camera string, imageType iface.ImageType) ([]iface.DetectionInfo, error) {
	var dets []iface.DetectionInfo
	if err := c.call(ctx, "simGetDetections", &dets, camera, imageType, c.VehicleName, false); err != nil {
		return nil, err
	}
	return dets, nil
}

func (c *Client) SetDetectionFilterRadius(ctx context.Context, camera string, imageType iface.ImageType, radiusCm float64) error {
	return c.call(ctx, "simSetDetectionFilterRadius", nil, camera, imageType, radiusCm, c.VehicleName, false)
}

func (c *Client) AddDetectionFilterMeshName(ctx context.Context, camera string, imageType iface.ImageType, meshName string) error {
	return c.call(ctx, "simAddDetectionFilterMeshName", nil, camera, imageType, meshName, c.VehicleName, false)
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.close()
	c.conn = nil
	c.State = DISCONNECTED
	return err
}
