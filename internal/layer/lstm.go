package layer

import (
	"math"
	"strconv"

	"github.com/FlavioCFOliveira/GoTranslate/internal/activations"
	"gonum.org/v1/gonum/floats"
)

// LSTMCell is a single Long Short-Term Memory layer advanced one time step
// at a time.
//
// Gate layout in the pre-activation vector is [input, forget, cell, output],
// each of length hidden.
type LSTMCell struct {
	inSize  int
	outSize int

	// inputProj holds W_x (4*hidden x in) and the gate biases,
	// recurrentProj holds W_h (4*hidden x hidden).
	inputProj     *Linear
	recurrentProj *Linear

	// Activation functions for each gate
	gateAct activations.Activation
	cellAct activations.Activation
}

// LSTMCache holds everything a single step needs for backpropagation.
type LSTMCache struct {
	x, hPrev, cPrev []float64
	pre             []float64
	i, f, g, o      []float64
	tanhC           []float64
}

// NewLSTMCell creates an LSTM cell. The forget gate bias starts at 1 so the
// cell does not forget everything before it has learned anything.
func NewLSTMCell(name string, inSize, outSize int, rng *RNG) *LSTMCell {
	l := &LSTMCell{
		inSize:        inSize,
		outSize:       outSize,
		inputProj:     NewLinear(name+".ih", inSize, 4*outSize, true, rng),
		recurrentProj: NewLinear(name+".hh", outSize, 4*outSize, false, rng),
		gateAct:       activations.Sigmoid{},
		cellAct:       activations.Tanh{},
	}
	bias := l.inputProj.Bias().Value
	for i := outSize; i < 2*outSize; i++ {
		bias[i] = 1.0
	}
	return l
}

// Step advances the cell by one time step.
// x: input vector of length inSize; hPrev, cPrev: previous state of length outSize.
func (l *LSTMCell) Step(x, hPrev, cPrev []float64) (h, c []float64, cache *LSTMCache) {
	n := l.outSize

	// === Pre-activations: W_x x + b + W_h h_prev ===
	pre := l.inputProj.Forward(x)
	floats.Add(pre, l.recurrentProj.Forward(hPrev))

	cache = &LSTMCache{
		x:     x,
		hPrev: hPrev,
		cPrev: cPrev,
		pre:   pre,
		i:     make([]float64, n),
		f:     make([]float64, n),
		g:     make([]float64, n),
		o:     make([]float64, n),
		tanhC: make([]float64, n),
	}

	h = make([]float64, n)
	c = make([]float64, n)
	for k := 0; k < n; k++ {
		cache.i[k] = l.gateAct.Activate(pre[k])
		cache.f[k] = l.gateAct.Activate(pre[n+k])
		cache.g[k] = l.cellAct.Activate(pre[2*n+k])
		cache.o[k] = l.gateAct.Activate(pre[3*n+k])

		// c_new = forget * c_prev + input * cell_candidate
		c[k] = cache.f[k]*cPrev[k] + cache.i[k]*cache.g[k]
		// h_new = output * tanh(c_new)
		cache.tanhC[k] = math.Tanh(c[k])
		h[k] = cache.o[k] * cache.tanhC[k]
	}
	return h, c, cache
}

// Backward back-propagates one step. dh and dc are the gradients flowing into
// this step's hidden and cell outputs (either may be nil for zero).
// Returns gradients for the step input and the previous hidden and cell state.
func (l *LSTMCell) Backward(cache *LSTMCache, dh, dc []float64) (dx, dhPrev, dcPrev []float64) {
	n := l.outSize
	dPre := make([]float64, 4*n)
	dcPrev = make([]float64, n)

	for k := 0; k < n; k++ {
		var dhk, dck float64
		if dh != nil {
			dhk = dh[k]
		}
		if dc != nil {
			dck = dc[k]
		}

		// Total cell gradient: carried from t+1 plus through h = o * tanh(c)
		dcTotal := dck + dhk*cache.o[k]*(1-cache.tanhC[k]*cache.tanhC[k])

		dPre[k] = dcTotal * cache.g[k] * l.gateAct.Derivative(cache.pre[k])
		dPre[n+k] = dcTotal * cache.cPrev[k] * l.gateAct.Derivative(cache.pre[n+k])
		dPre[2*n+k] = dcTotal * cache.i[k] * l.cellAct.Derivative(cache.pre[2*n+k])
		dPre[3*n+k] = dhk * cache.tanhC[k] * l.gateAct.Derivative(cache.pre[3*n+k])

		dcPrev[k] = dcTotal * cache.f[k]
	}

	dx = l.inputProj.Backward(cache.x, dPre)
	dhPrev = l.recurrentProj.Backward(cache.hPrev, dPre)
	return dx, dhPrev, dcPrev
}

// Params returns W_x, the gate biases and W_h.
func (l *LSTMCell) Params() []*Param {
	return append(l.inputProj.Params(), l.recurrentProj.Params()...)
}

// InSize returns the input size of the cell.
func (l *LSTMCell) InSize() int {
	return l.inSize
}

// OutSize returns the hidden size of the cell.
func (l *LSTMCell) OutSize() int {
	return l.outSize
}

// State is the recurrent state of a stacked LSTM: one hidden and one cell
// vector per layer, bottom layer first.
type State struct {
	H [][]float64
	C [][]float64
}

// NewState returns a zero state for the given depth and width.
func NewState(layers, hidden int) State {
	s := State{H: make([][]float64, layers), C: make([][]float64, layers)}
	for l := 0; l < layers; l++ {
		s.H[l] = make([]float64, hidden)
		s.C[l] = make([]float64, hidden)
	}
	return s
}

// Top returns the hidden vector of the last layer.
func (s State) Top() []float64 {
	return s.H[len(s.H)-1]
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := State{H: make([][]float64, len(s.H)), C: make([][]float64, len(s.C))}
	for l := range s.H {
		out.H[l] = append([]float64(nil), s.H[l]...)
		out.C[l] = append([]float64(nil), s.C[l]...)
	}
	return out
}

// StackedLSTM runs several LSTM cells on top of each other, applying dropout
// to the output of every layer but the last (training only).
type StackedLSTM struct {
	cells   []*LSTMCell
	dropout *Dropout
	hidden  int
}

// StackedCache is the per-step cache of a StackedLSTM.
type StackedCache struct {
	cells []*LSTMCache
	masks [][]float64
}

// NewStackedLSTM creates a layers-deep LSTM. Only the first layer sees inSize
// inputs; the rest take the hidden vector of the layer below.
func NewStackedLSTM(name string, inSize, hidden, layers int, dropout float64, rng *RNG) *StackedLSTM {
	if layers < 1 {
		panic("StackedLSTM: need at least one layer")
	}
	s := &StackedLSTM{
		cells:   make([]*LSTMCell, layers),
		dropout: NewDropout(dropout, rng.Derive()),
		hidden:  hidden,
	}
	for l := 0; l < layers; l++ {
		in := hidden
		if l == 0 {
			in = inSize
		}
		s.cells[l] = NewLSTMCell(name+".l"+strconv.Itoa(l), in, hidden, rng)
	}
	return s
}

// Step advances every layer by one time step and returns the top layer output.
func (s *StackedLSTM) Step(x []float64, prev State, training bool) ([]float64, State, *StackedCache) {
	layers := len(s.cells)
	next := State{H: make([][]float64, layers), C: make([][]float64, layers)}
	cache := &StackedCache{
		cells: make([]*LSTMCache, layers),
		masks: make([][]float64, layers),
	}

	input := x
	for l, cell := range s.cells {
		h, c, cc := cell.Step(input, prev.H[l], prev.C[l])
		next.H[l], next.C[l] = h, c
		cache.cells[l] = cc
		if l < layers-1 {
			input, cache.masks[l] = s.dropout.Forward(h, training)
		}
	}
	return next.H[layers-1], next, cache
}

// Backward back-propagates one step. dOut is the gradient on the top output
// (nil for zero); dNext is the gradient on the state this step produced.
// Returns the gradient for the step input and for the incoming state.
func (s *StackedLSTM) Backward(cache *StackedCache, dOut []float64, dNext State) ([]float64, State) {
	layers := len(s.cells)
	dh := make([][]float64, layers)
	dc := make([][]float64, layers)
	for l := 0; l < layers; l++ {
		dh[l] = make([]float64, s.hidden)
		if dNext.H != nil && dNext.H[l] != nil {
			copy(dh[l], dNext.H[l])
		}
		if dNext.C != nil && dNext.C[l] != nil {
			dc[l] = dNext.C[l]
		}
	}
	if dOut != nil {
		floats.Add(dh[layers-1], dOut)
	}

	dPrev := State{H: make([][]float64, layers), C: make([][]float64, layers)}
	var dx []float64
	for l := layers - 1; l >= 0; l-- {
		dxl, dhp, dcp := s.cells[l].Backward(cache.cells[l], dh[l], dc[l])
		dPrev.H[l], dPrev.C[l] = dhp, dcp
		if l > 0 {
			floats.Add(dh[l-1], s.dropout.Backward(dxl, cache.masks[l-1]))
		} else {
			dx = dxl
		}
	}
	return dx, dPrev
}

// Params returns the parameters of every layer, bottom first.
func (s *StackedLSTM) Params() []*Param {
	var params []*Param
	for _, c := range s.cells {
		params = append(params, c.Params()...)
	}
	return params
}

// Layers returns the depth of the stack.
func (s *StackedLSTM) Layers() int {
	return len(s.cells)
}

// Hidden returns the hidden size.
func (s *StackedLSTM) Hidden() int {
	return s.hidden
}
