package spectral

import "math"

// StencilCoefficients returns the weights c[1..order/2] of the centered
// finite difference of the given even order, c[0] unused. Staggered stencils
// difference across half cells, nodal stencils across whole cells.
func StencilCoefficients(order int, nodal bool) (c []float64) {
	m := order / 2
	c = make([]float64, m+1)
	if m == 0 {
		return
	}
	if nodal {
		c[0] = -2.
		for n := 1; n <= m; n++ {
			c[n] = -float64(m+1-n) / float64(m+n) * c[n-1]
		}
		c[0] = 0
		return
	}
	c[1] = 1.
	for p := 2; p <= m; p++ {
		c[1] *= float64((2*p-1)*(2*p-1)) / float64(4*(p-1)*p)
	}
	for n := 2; n <= m; n++ {
		c[n] = -float64((2*n-3)*(m-n+1)) / float64((2*n-1)*(m+n-1)) * c[n-1]
	}
	return
}

// ModifiedK is the wavenumber seen by the finite difference stencil of the
// given order. A non positive order means the exact, infinite order, k.
func ModifiedK(k, h float64, order int, nodal bool) (km float64) {
	if order <= 0 {
		return k
	}
	c := StencilCoefficients(order, nodal)
	for n := 1; n < len(c); n++ {
		if nodal {
			fn := float64(n)
			km += c[n] * math.Sin(fn*k*h) / (fn * h)
		} else {
			fn := float64(n) - 0.5
			km += c[n] * math.Sin(fn*k*h) / (fn * h)
		}
	}
	return
}

// Wavenumbers lists the k of each DFT coefficient of an n point sequence with
// spacing h, in transform order.
func Wavenumbers(n int, h float64) (k []float64) {
	k = make([]float64, n)
	dk := 2. * math.Pi / (float64(n) * h)
	for j := 0; j < n; j++ {
		f := j
		if j > n/2 {
			f = j - n
		}
		k[j] = dk * float64(f)
	}
	return
}
