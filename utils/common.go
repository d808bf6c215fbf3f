package utils

const (
	// STEPTOL bounds the difference allowed between step values of fields
	// sharing one step axis
	STEPTOL = 1.e-8
	// ROUNDTRIPTOL is the coordinate and value tolerance a written file keeps
	// with the default fixed precision
	ROUNDTRIPTOL = 1.e-4
)
