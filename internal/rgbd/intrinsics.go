package rgbd

// Intrinsics is a pinhole camera model taken from the color stream's native
// calibration. Distortion coefficients are not carried.
type Intrinsics struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Fx     float64 `json:"fx"`
	Fy     float64 `json:"fy"`
	Cx     float64 `json:"cx"`
	Cy     float64 `json:"cy"`
}

// IsZero reports whether the intrinsics are unset.
func (i Intrinsics) IsZero() bool {
	return i == Intrinsics{}
}
