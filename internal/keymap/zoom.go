package keymap

// Zoom limits for the canvas. Fit never magnifies past 1.0.
const (
	MinZoom = 0.1
	MaxZoom = 2.0
)

// ZoomStep moves a zoom level one notch and clamps it to the allowed range.
func ZoomStep(current float64, in bool) float64 {
	step := 0.1
	if !in {
		step = -step
	}
	z := current + step
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

// CalculateFitZoom returns the zoom level at which content of the given
// bounding size fits inside the canvas with padding on every side. The
// result is capped at 1.0: fitting never magnifies.
func CalculateFitZoom(canvasW, canvasH, contentW, contentH, padding float64) float64 {
	if contentW <= 0 || contentH <= 0 {
		return 1.0
	}
	availW := canvasW - 2*padding
	availH := canvasH - 2*padding
	if availW <= 0 || availH <= 0 {
		return MinZoom
	}
	z := availW / contentW
	if v := availH / contentH; v < z {
		z = v
	}
	if z > 1.0 {
		return 1.0
	}
	if z < MinZoom {
		return MinZoom
	}
	return z
}
