package layer

// Param is a learnable tensor stored as a flat slice together with the
// gradient accumulated for it since the last ClearGradients.
type Param struct {
	Name  string
	Value []float64
	Grad  []float64
}

func newParam(name string, size int) *Param {
	return &Param{
		Name:  name,
		Value: make([]float64, size),
		Grad:  make([]float64, size),
	}
}

// Size returns the number of scalars in the parameter.
func (p *Param) Size() int {
	return len(p.Value)
}

// ZeroGrad clears the accumulated gradient.
func (p *Param) ZeroGrad() {
	for i := range p.Grad {
		p.Grad[i] = 0
	}
}

// Layer is anything owning learnable parameters.
type Layer interface {
	Params() []*Param
}

// Collect concatenates the parameters of several layers.
func Collect(layers ...Layer) []*Param {
	var params []*Param
	for _, l := range layers {
		params = append(params, l.Params()...)
	}
	return params
}

// ClearGradients zeroes the gradients of every param.
func ClearGradients(params []*Param) {
	for _, p := range params {
		p.ZeroGrad()
	}
}

// CountParams returns the total number of scalars across params.
func CountParams(params []*Param) int {
	n := 0
	for _, p := range params {
		n += p.Size()
	}
	return n
}
