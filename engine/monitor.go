package engine

import "math"

// Monitor describes the physical display used to convert degrees of visual
// angle to pixels.
type Monitor struct {
	WidthCM    float64 `yaml:"width_cm"`
	DistanceCM float64 `yaml:"distance_cm"`
}

func DefaultMonitor() Monitor {
	return Monitor{WidthCM: 52.65, DistanceCM: 57}
}

// DegToPix converts deg to pixels on a screen widthPx pixels wide, using the
// small angle approximation.
func (m Monitor) DegToPix(deg float64, widthPx int) float64 {
	cm := deg * m.DistanceCM * math.Pi / 180
	return cm * float64(widthPx) / m.WidthCM
}
