package ranges

// Plausibility envelope for component supply voltages.
const (
	MinVoltage  = -50.0
	MaxVoltage  = 100.0
	MaxVoltSpan = 100.0
	MinVoltSpan = 0.1
)

// ValidVoltage reports whether r can describe an operating voltage range.
// Temperature ranges are never passed through it.
func ValidVoltage(r Range) bool {
	if r.Low < MinVoltage || r.Low > MaxVoltage || r.High < MinVoltage || r.High > MaxVoltage {
		return false
	}
	if r.Low > r.High {
		return false
	}
	span := r.Span()
	return span <= MaxVoltSpan && span >= MinVoltSpan
}
