package render

import (
	"testing"

	"github.com/coreman2200/funtimes-embers/internal/effect"
)

// helper to estimate current in mA using same model as limiter
func estCurrent(buf []Color, chanmA float32) float64 {
	total := 0.0
	for i := range buf {
		total += float64((buf[i].R + buf[i].G + buf[i].B) * chanmA)
	}
	return total
}

func TestDefaultLimiterBudgetClamp(t *testing.T) {
	// 10 voxels all white
	n := 10
	buf := make([]Color, n)
	for i := range buf {
		buf[i] = Color{1, 1, 1}
	}
	u := effect.NewParams()
	u.Set("LEDChan_mA", 20) // 60mA at white per LED
	u.Set("Budget_mA", 300) // allow 300 mA total
	u.Set("WhiteCap", 3.0)
	u.Set("LimiterKnee", 0.9)

	// pre-limit current would be 10 * 60 = 600 mA
	DefaultLimiter(buf, u)
	cur := estCurrent(buf, 20)
	if cur > 300.1 {
		t.Fatalf("expected <= 300mA after limit, got %.2f mA", cur)
	}
}

func TestWhiteCap(t *testing.T) {
	buf := []Color{{1, 1, 1}} // sum=3
	u := effect.NewParams()
	u.Set("WhiteCap", 1.5)
	DefaultLimiter(buf, u)
	sum := buf[0].R + buf[0].G + buf[0].B
	if sum > 1.5001 {
		t.Fatalf("expected sum <= 1.5, got %f", sum)
	}
}

func TestPreviewModeBypassesLimiter(t *testing.T) {
	buf := []Color{{1, 1, 1}}
	u := effect.NewParams()
	u.Set("WhiteCap", 1.5)
	u.SetBool("PreviewMode", true)
	DefaultLimiter(buf, u)
	if buf[0].R != 1 {
		t.Fatalf("limiter ran in preview mode: %+v", buf[0])
	}
}

func TestApplyLEDExposureAndClamp(t *testing.T) {
	buf := []Color{{0.25, 0.5, 2}}
	u := effect.NewParams()
	u.Set("ExposureEV", 1)
	u.Set("WhiteCap", 10)
	ApplyLED(buf, u)
	if buf[0].R < 0.49 || buf[0].R > 0.51 {
		t.Fatalf("expected +1 EV to double red, got %+v", buf[0])
	}
	if buf[0].B != 1 {
		t.Fatalf("expected blue clamped to 1, got %+v", buf[0])
	}
}

func TestToneMapStaysInRange(t *testing.T) {
	buf := []Color{{0, 0.5, 40}}
	FilmicToneMap(buf, nil)
	if buf[0].R != 0 || buf[0].B > 1 || buf[0].G <= 0 {
		t.Fatalf("tone map out of range: %+v", buf[0])
	}
}

func TestApplyLEDToneMapUsesGamma(t *testing.T) {
	lin := []Color{{1, 0, 0}}
	u := effect.NewParams()
	u.SetBool("ToneMap", true)
	u.Set("OutputGamma", 1)
	ApplyLED(lin, u)
	if d := float64(lin[0].R) - float64(acesApprox(1)); d > 1e-6 || d < -1e-6 {
		t.Fatalf("gamma 1 should leave the ACES value, got %+v", lin[0])
	}

	u.Set("OutputGamma", 2.2)
	enc := []Color{{1, 0, 0}}
	ApplyLED(enc, u)
	if enc[0].R <= lin[0].R {
		t.Fatalf("gamma 2.2 should brighten mid tones: %v <= %v", enc[0].R, lin[0].R)
	}
}
