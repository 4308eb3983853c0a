package values

// Status is the enable/disable state of an installed driver.
type Status int

const (
	// StatusDisabled marks a driver that is installed but switched off.
	StatusDisabled Status = 0
	// StatusEnabled marks a driver available for use.
	StatusEnabled Status = 1
)

// String returns a human readable status.
func (s Status) String() string {
	switch s {
	case StatusEnabled:
		return "enabled"
	case StatusDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Ptr returns a pointer to s, convenient for optional filters.
func (s Status) Ptr() *Status {
	return &s
}
