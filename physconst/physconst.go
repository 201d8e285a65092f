package physconst

// SI values
const (
	C    = 299792458.
	Mu0  = 1.25663706212e-06
	Ep0  = 1. / (C * C * Mu0)
	InvC = 1. / C
)
