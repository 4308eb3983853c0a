package ports

// ObjectFactory produces new instances from an implementation identifier.
// Construction failures are returned as errors and must not be swallowed.
type ObjectFactory interface {
	// CreateInstance produces a new instance of class with no arguments.
	CreateInstance(class string) (any, error)

	// CreateInstanceWithConfig produces a new instance of class, passing config
	// as its sole constructor argument.
	CreateInstanceWithConfig(class string, config map[string]any) (any, error)

	// Has reports whether class can be produced.
	Has(class string) bool
}
