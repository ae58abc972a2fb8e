package render

// Mix blends two framebuffers (a,b) into dst using alpha (0..1).
// Channels are linear; no gamma assumed.
func Mix(dst, a, b []Color, alpha float64) {
	if alpha <= 0 {
		copy(dst, a)
		return
	}
	if alpha >= 1 {
		copy(dst, b)
		return
	}
	af := float32(1.0 - alpha)
	bf := float32(alpha)
	n := len(dst)
	for i := 0; i < n; i++ {
		dst[i].R = a[i].R*af + b[i].R*bf
		dst[i].G = a[i].G*af + b[i].G*bf
		dst[i].B = a[i].B*af + b[i].B*bf
	}
}

// Lighten keeps the brighter of dst and src per channel.
func Lighten(dst, src []Color) {
	for i := range dst {
		if src[i].R > dst[i].R {
			dst[i].R = src[i].R
		}
		if src[i].G > dst[i].G {
			dst[i].G = src[i].G
		}
		if src[i].B > dst[i].B {
			dst[i].B = src[i].B
		}
	}
}
