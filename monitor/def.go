package monitor

import (
	"SimCapture/logger"
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
)

// Progress is the JSON body of /api/progress.
type Progress struct {
	RunID      string `json:"runId"`
	Total      int    `json:"total"`
	Frames     int    `json:"frames"`
	Iteration  int    `json:"iteration"`
	Detections int    `json:"detections"`
	Finished   bool   `json:"finished"`
	Error      string `json:"error,omitempty"`
}

// Monitor exposes capture progress and process usage over HTTP.
type Monitor struct {
	registry     *prometheus.Registry
	memUsage     prometheus.Gauge
	cpuUsage     prometheus.Gauge
	frames       prometheus.Counter
	detections   prometheus.Counter
	segmentation *prometheus.GaugeVec

	proc *process.Process

	mu       sync.RWMutex
	progress Progress
}

func New() *Monitor {
	m := &Monitor{
		registry: prometheus.NewRegistry(),
		memUsage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "memory_usage_Megabytes",
			Help: "Memory usage in Megabytes",
		}),
		cpuUsage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cpu_usage_percent",
			Help: "CPU usage in percent",
		}),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "capture_frames_total",
			Help: "Frames captured and written to disk",
		}),
		detections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "capture_detections_total",
			Help: "Detections reported by the simulator across all frames",
		}),
		segmentation: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "segmentation_object_matched",
			Help: "1 if the object-name pattern matched a scene object, labelled with its segmentation id",
		}, []string{"object", "id"}),
		proc: &process.Process{Pid: int32(os.Getpid())},
	}
	m.registry.MustRegister(m.memUsage, m.cpuUsage, m.frames, m.detections, m.segmentation)
	return m
}

func (m *Monitor) Begin(runID string, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress = Progress{RunID: runID, Total: total}
}

func (m *Monitor) FrameCaptured(iteration, detections int) {
	m.frames.Inc()
	m.detections.Add(float64(detections))
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress.Frames++
	m.progress.Iteration = iteration
	m.progress.Detections += detections
}

func (m *Monitor) SegmentationAssigned(object string, id int, matched bool) {
	v := 0.0
	if matched {
		v = 1
	}
	m.segmentation.WithLabelValues(object, strconv.Itoa(id)).Set(v)
}

func (m *Monitor) Finish(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress.Finished = true
	if err != nil {
		m.progress.Error = err.Error()
	}
}

func (m *Monitor) Progress() Progress {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.progress
}

func (m *Monitor) CheckProcessInfo() {
	if memInfo, err := m.proc.MemoryInfo(); err == nil {
		m.memUsage.Set(float64(memInfo.RSS / 1024 / 1024))
	}
	if cpuPercent, err := m.proc.CPUPercent(); err == nil {
		m.cpuUsage.Set(math.Round(cpuPercent*100) / 100)
	}
}

func (m *Monitor) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})))
	r.GET("/api/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/api/progress", func(c *gin.Context) {
		c.JSON(http.StatusOK, m.Progress())
	})
	return r
}

// Start serves the router on port and samples process usage until ctx is done.
func (m *Monitor) Start(ctx context.Context, port int) {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: m.Router(),
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log().Error("Monitor server stopped", zap.Error(err))
		}
	}()
	logger.Log().Info("Monitor listening", zap.Int("port", port))

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
checkPcs:
	for {
		select {
		case <-ctx.Done():
			break checkPcs
		case <-ticker.C:
			m.CheckProcessInfo()
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log().Error("Monitor shutdown", zap.Error(err))
	}
}
