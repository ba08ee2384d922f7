package filter

// Stage math follows the Filter Effects Module shorthand definitions,
// evaluated on sRGB values in [0, 1].

// op is a compiled stage: rgb' = m*rgb + offset, clamped
type op struct {
	m      [3][3]float64
	offset float64
}

func (o op) apply(rgb [3]float64) [3]float64 {
	var out [3]float64
	for i := 0; i < 3; i++ {
		v := o.m[i][0]*rgb[0] + o.m[i][1]*rgb[1] + o.m[i][2]*rgb[2] + o.offset
		out[i] = clamp01(v)
	}
	return out
}

func (c Chain) compile() []op {
	ops := make([]op, 0, len(c))
	for _, s := range c {
		ops = append(ops, compileStage(s))
	}
	return ops
}

func compileStage(s Stage) op {
	amount := float64(s.Amount) / 100
	if amount < 0 {
		amount = 0
	}

	switch s.Kind {
	case Brightness:
		return op{m: diagonal(amount)}
	case Contrast:
		return op{m: diagonal(amount), offset: 0.5 - 0.5*amount}
	case Saturate:
		a := amount
		return op{m: [3][3]float64{
			{0.213 + 0.787*a, 0.715 - 0.715*a, 0.072 - 0.072*a},
			{0.213 - 0.213*a, 0.715 + 0.285*a, 0.072 - 0.072*a},
			{0.213 - 0.213*a, 0.715 - 0.715*a, 0.072 + 0.928*a},
		}}
	case Sepia:
		r := 1 - clamp01(amount)
		return op{m: [3][3]float64{
			{0.393 + 0.607*r, 0.769 - 0.769*r, 0.189 - 0.189*r},
			{0.349 - 0.349*r, 0.686 + 0.314*r, 0.168 - 0.168*r},
			{0.272 - 0.272*r, 0.534 - 0.534*r, 0.131 + 0.869*r},
		}}
	case Grayscale:
		r := 1 - clamp01(amount)
		return op{m: [3][3]float64{
			{0.2126 + 0.7874*r, 0.7152 - 0.7152*r, 0.0722 - 0.0722*r},
			{0.2126 - 0.2126*r, 0.7152 + 0.2848*r, 0.0722 - 0.0722*r},
			{0.2126 - 0.2126*r, 0.7152 - 0.7152*r, 0.0722 + 0.9278*r},
		}}
	}
	return op{m: diagonal(1)}
}

func diagonal(v float64) [3][3]float64 {
	return [3][3]float64{
		{v, 0, 0},
		{0, v, 0},
		{0, 0, v},
	}
}
