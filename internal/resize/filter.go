package resize

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/image/draw"
)

// DefaultFilter is the resampling filter used when none is configured.
const DefaultFilter = "lanczos3"

// Lanczos3 is a three-lobe Lanczos windowed sinc kernel.
var Lanczos3 = &draw.Kernel{Support: 3, At: lanczos3}

func lanczos3(t float64) float64 {
	if t < 0 {
		t = -t
	}
	if t < 1e-12 {
		return 1
	}
	if t >= 3 {
		return 0
	}
	pt := math.Pi * t
	return 3 * math.Sin(pt) * math.Sin(pt/3) / (pt * pt)
}

var filters = map[string]draw.Interpolator{
	"lanczos3":       Lanczos3,
	"catmullrom":     draw.CatmullRom,
	"bilinear":       draw.BiLinear,
	"approxbilinear": draw.ApproxBiLinear,
	"nearest":        draw.NearestNeighbor,
}

// ParseFilter returns the interpolator for a filter name. An empty name
// selects DefaultFilter.
func ParseFilter(name string) (draw.Interpolator, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultFilter
	}
	f, ok := filters[key]
	if !ok {
		return nil, fmt.Errorf("unknown resize filter %q", name)
	}
	return f, nil
}
