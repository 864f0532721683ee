package capture

import (
	"SimCapture/logger"
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

const (
	// MatchAll selects every object in the scene.
	MatchAll = `[\w]*`
	// DefaultSegmentationSettle is how long the simulator needs to apply the
	// reset before new IDs are assigned.
	DefaultSegmentationSettle = time.Second
)

// SegmentationAssignment records the ID given to one object-name pattern.
type SegmentationAssignment struct {
	Name    string
	Pattern string
	ID      int
	Matched bool
	Err     error
}

// SegmentationID is the ID for the object name at index; 0 stays background.
func SegmentationID(index int) int {
	return (index + 1) % 256
}

func SegmentationPattern(name string) string {
	return MatchAll + name + MatchAll
}

// AssignSegmentationIDs resets every object to ID 0, waits settle, then gives
// each name in order its own ID. Failures are logged per step and never stop
// the remaining assignments.
func AssignSegmentationIDs(ctx context.Context, s *Session, names []string, settle time.Duration, clk clock.Clock) []SegmentationAssignment {
	log := logger.Stage("segmentation")
	if clk == nil {
		clk = clock.New()
	}

	log.Info("Resetting all object IDs for segmentation")
	if _, err := s.Sim.SetSegmentationObjectID(ctx, MatchAll, 0, true); err != nil {
		log.Error("Segmentation reset failed", zap.Error(err))
	}
	clk.Sleep(settle)

	out := make([]SegmentationAssignment, 0, len(names))
	for i, name := range names {
		a := SegmentationAssignment{
			Name:    name,
			Pattern: SegmentationPattern(name),
			ID:      SegmentationID(i),
		}
		log.Info("Setting segmentation ID", zap.String("object", name), zap.Int("id", a.ID))
		a.Matched, a.Err = s.Sim.SetSegmentationObjectID(ctx, a.Pattern, a.ID, true)
		switch {
		case a.Err != nil:
			log.Error("Segmentation ID assignment failed", zap.String("object", name), zap.Error(a.Err))
		case !a.Matched:
			log.Warn("No scene object matched", zap.String("object", name), zap.String("pattern", a.Pattern))
		default:
			log.Info("Segmentation ID assigned", zap.String("object", name), zap.Bool("found", a.Matched))
		}
		out = append(out, a)
	}
	return out
}
