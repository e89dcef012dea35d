package dashboard

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const maxPageScale = 3

// Scale describes how much to enlarge the page so a zoomed-out or low-DPR
// viewport still looks like 100%.
type Scale struct {
	Factor       float64
	WrapperWidth float64
}

// CSSFactor formats Factor for the --page-scale custom property.
func (s Scale) CSSFactor() string {
	return strconv.FormatFloat(s.Factor, 'f', -1, 64)
}

func (s Scale) CSSWidth() string {
	return fmt.Sprintf("%s%%", strconv.FormatFloat(s.WrapperWidth, 'f', 4, 64))
}

// ScaleFor uses the smaller of dpr and viewport scale as the shrink factor.
// Missing or zero inputs count as 1; the result is capped at 3x.
func ScaleFor(dpr, viewportScale float64) Scale {
	if dpr <= 0 || math.IsNaN(dpr) {
		dpr = 1
	}
	if viewportScale <= 0 || math.IsNaN(viewportScale) {
		viewportScale = 1
	}
	shrink := math.Min(dpr, viewportScale)
	factor := 1.0
	if shrink < 1 {
		factor = math.Min(1/shrink, maxPageScale)
	}
	return Scale{Factor: factor, WrapperWidth: 100 / factor}
}

// ParseScale reads dpr/zoom query values; unparsable values count as 1.
func ParseScale(dpr, zoom string) Scale {
	return ScaleFor(parsePositive(dpr), parsePositive(zoom))
}

func parsePositive(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v <= 0 {
		return 1
	}
	return v
}
