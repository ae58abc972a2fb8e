package led

// Driver abstracts an LED output sink.
type Driver interface {
	// Write pushes an RGB frame to hardware. len(rgb) must be 3*N.
	Write(rgb []byte) error
	// Close releases resources.
	Close() error
}

// EstimateAmps returns the estimated current of an rgb frame, each channel
// drawing chanMA milliamps at full scale (20 if zero).
func EstimateAmps(rgb []byte, chanMA float64) float64 {
	if chanMA <= 0 {
		chanMA = 20
	}
	var sum float64
	for i := 0; i+2 < len(rgb); i += 3 {
		sum += float64(rgb[i]) + float64(rgb[i+1]) + float64(rgb[i+2])
	}
	return sum / 255.0 * chanMA / 1000
}
