package utils

const (
	NODETOL    = 1.e-12
	SMALL      = 1.e-15
	VSMALL     = 1.e-300
	ROOTVSMALL = 1.e-150
	GREAT      = 1.e15
	VGREAT     = 1.e300
)
