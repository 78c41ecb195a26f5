package crop

// Unit is the coordinate unit of a Region.
type Unit string

const (
	UnitPixel   Unit = "px"
	UnitPercent Unit = "%"
)

// Size is a pixel width and height.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s Size) IsZero() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Rect is a rectangle with fractional coordinates.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Region is the user-chosen crop in the coordinate space of the displayed
// image. Percent regions are relative to the displayed width and height.
type Region struct {
	Unit   Unit    `json:"unit"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultRegion covers the central 90% of the displayed image.
func DefaultRegion() Region {
	return Region{Unit: UnitPercent, X: 5, Y: 5, Width: 90, Height: 90}
}

// Pixels resolves the region against the displayed size.
func (r Region) Pixels(displayed Size) Region {
	if r.Unit != UnitPercent {
		r.Unit = UnitPixel
		return r
	}
	w := float64(displayed.Width) / 100
	h := float64(displayed.Height) / 100
	return Region{
		Unit:   UnitPixel,
		X:      r.X * w,
		Y:      r.Y * h,
		Width:  r.Width * w,
		Height: r.Height * h,
	}
}
