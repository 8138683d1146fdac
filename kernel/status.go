package kernel

// Status is the outcome code returned by resource lifecycle operations. The
// numeric values match the codes used by the boot loader glue and must not
// be reordered.
type Status uint32

// The set of lifecycle status codes.
const (
	StatusFailure Status = iota
	StatusSuccess
	StatusAllocNoMem
	StatusBufferOverflow
	StatusInvalidTerminal
	StatusPanic
	StatusWarning
)

// String implements fmt.Stringer for Status.
func (s Status) String() string {
	switch s {
	case StatusFailure:
		return "failure"
	case StatusSuccess:
		return "success"
	case StatusAllocNoMem:
		return "out of memory"
	case StatusBufferOverflow:
		return "buffer overflow"
	case StatusInvalidTerminal:
		return "invalid terminal"
	case StatusPanic:
		return "panic"
	case StatusWarning:
		return "warning"
	default:
		return "unknown"
	}
}
