package busdispatch

import "strings"

// ErrorCategory represents the classification of engine errors for telemetry
type ErrorCategory int

const (
	// ErrCategoryDevice indicates capture device failures (missing, busy, unplugged)
	ErrCategoryDevice ErrorCategory = iota
	// ErrCategoryNegotiation indicates caps/format negotiation failures
	ErrCategoryNegotiation
	// ErrCategoryPermission indicates access failures on the device node
	ErrCategoryPermission
	// ErrCategoryResource indicates memory/buffer allocation failures
	ErrCategoryResource
	// ErrCategoryUnknown indicates unclassified errors
	ErrCategoryUnknown

	numCategories
)

// String returns a human-readable string representation of the error category
func (e ErrorCategory) String() string {
	switch e {
	case ErrCategoryDevice:
		return "device"
	case ErrCategoryNegotiation:
		return "negotiation"
	case ErrCategoryPermission:
		return "permission"
	case ErrCategoryResource:
		return "resource"
	default:
		return "unknown"
	}
}

// Keyword tables, checked in priority order (most specific first).
var (
	permissionKeywords = []string{
		"permission denied",
		"not permitted",
		"eacces",
		"eperm",
	}
	negotiationKeywords = []string{
		"not negotiated",
		"negotiation",
		"caps",
		"format",
		"could not map",
		"unsupported",
	}
	resourceKeywords = []string{
		"out of memory",
		"enomem",
		"allocate",
		"buffer pool",
		"no space",
	}
	deviceKeywords = []string{
		"device",
		"/dev/",
		"busy",
		"no such file",
		"cannot identify",
		"could not open",
		"failed to open",
		"v4l2",
		"not found",
		"disconnected",
	}
)

// Classify analyzes an error message and its debug string and categorizes it
//
// Classification is based on message heuristics only: the engine's error
// domains are not exposed through the bus message copy.
func Classify(text, debug string) ErrorCategory {
	combined := strings.ToLower(text + " " + debug)

	switch {
	case containsAny(combined, permissionKeywords):
		return ErrCategoryPermission
	case containsAny(combined, negotiationKeywords):
		return ErrCategoryNegotiation
	case containsAny(combined, resourceKeywords):
		return ErrCategoryResource
	case containsAny(combined, deviceKeywords):
		return ErrCategoryDevice
	default:
		return ErrCategoryUnknown
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
