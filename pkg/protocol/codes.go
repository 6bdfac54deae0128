package protocol

// Message codes carried in the "T" field.
const (
	CodeMove        = 104 // absolute move, host to arm
	CodeQueryStatus = 105 // status query, host to arm
	CodeSetClamp    = 106 // clamp open/close, host to arm

	CodeStatus       = 1051 // status report, arm to host
	CodeStatusLegacy = 1001 // status report from older firmware
)

// DefaultStatusCodes returns the codes treated as status reports.
func DefaultStatusCodes() []int {
	return []int{CodeStatus, CodeStatusLegacy}
}
