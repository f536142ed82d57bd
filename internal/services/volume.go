package services

// Volumes holds the derived volumes for one activity's dimensions
type Volumes struct {
	Gross    float64
	Discount float64
	Net      float64
}

// ComputeVolumes derives gross, discount and net volumes from raw and
// discount dimensions. Net is not clamped: a discount prism larger than
// the measured prism yields a negative net, which is preserved exactly
// as the field crews recorded it.
func ComputeVolumes(length, width, height, discountLength, discountWidth, discountHeight float64) Volumes {
	gross := length * width * height
	discount := discountLength * discountWidth * discountHeight
	return Volumes{
		Gross:    gross,
		Discount: discount,
		Net:      gross - discount,
	}
}
