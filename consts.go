package tagotip

const (
	MaxVariables  = 100
	MaxMetaPairs  = 32
	MaxTotalMeta  = 512
	MaxVarNameLen = 100
	MaxSerialLen  = 100
	MaxGroupLen   = 100
	MaxMetaKeyLen = 100
	MaxUnitLen    = 25
	MaxFrameSize  = 16_384
	AuthTokenLen  = 34
	AuthHashLen   = 16
)
