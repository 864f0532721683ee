package Adhoc

import (
	"SimCapture/logger"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const TimeOutSeconds = 5

type RunRequest struct {
	Id          string   `json:"id"`
	Host        string   `json:"host"`
	OutputDir   string   `json:"outputDir"`
	Iterations  int      `json:"iterations"`
	ObjectNames []string `json:"objectNames"`
	TimeStamp   int64    `json:"timestamp"`
}

type FrameRequest struct {
	Iteration  int   `json:"iteration"`
	Detections int   `json:"detections"`
	TimeStamp  int64 `json:"timestamp"`
}

type FinishRequest struct {
	Frames    int    `json:"frames"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	TimeStamp int64  `json:"timestamp"`
}

type RegisterResponse struct {
	Id      string `json:"id"`
	Success bool   `json:"success"`
}

type RegServerConfig struct {
	Port int
	Addr string
}

func (reg *RegServerConfig) SetAddress(addr string, port int) {
	reg.Addr = addr
	reg.Port = port
}

// Reporter tells a dataset registry about a capture run. Registry failures
// are logged and never reach the capture workflow.
type Reporter struct {
	RunID  string
	ctx    context.Context
	base   string
	client *resty.Client
	now    func() time.Time
}

func NewReporter(cfg RegServerConfig) *Reporter {
	return &Reporter{
		RunID:  uuid.NewString(),
		ctx:    context.Background(),
		base:   fmt.Sprintf("http://%s:%d", cfg.Addr, cfg.Port),
		client: resty.New().SetTimeout(TimeOutSeconds * time.Second),
		now:    time.Now,
	}
}

func (r *Reporter) post(ctx context.Context, path string, body any) bool {
	var respBody RegisterResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&respBody).
		Post(r.base + path)
	if err != nil {
		logger.Log().Error("registry request error", zap.String("path", path), zap.Error(err))
		return false
	}
	if resp.IsError() {
		logger.Log().Error("registry returned error", zap.String("path", path), zap.String("status", resp.Status()), zap.String("body", resp.String()))
		return false
	}
	return respBody.Success
}

// Start registers the run. Frame reports afterwards are bound to ctx.
func (r *Reporter) Start(ctx context.Context, outputDir string, iterations int, objectNames []string) bool {
	r.ctx = ctx
	host, _ := os.Hostname()
	return r.post(ctx, "/api/runs", RunRequest{
		Id:          r.RunID,
		Host:        host,
		OutputDir:   outputDir,
		Iterations:  iterations,
		ObjectNames: objectNames,
		TimeStamp:   r.now().Unix(),
	})
}

// FrameCaptured lets the reporter observe the capture loop.
func (r *Reporter) FrameCaptured(iteration, detections int) {
	r.post(r.ctx, "/api/runs/"+r.RunID+"/frames", FrameRequest{
		Iteration:  iteration,
		Detections: detections,
		TimeStamp:  r.now().Unix(),
	})
}

func (r *Reporter) Finish(ctx context.Context, frames int, runErr error) bool {
	req := FinishRequest{Frames: frames, Success: runErr == nil, TimeStamp: r.now().Unix()}
	if runErr != nil {
		req.Error = runErr.Error()
	}
	return r.post(ctx, "/api/runs/"+r.RunID+"/finish", req)
}
