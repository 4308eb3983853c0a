package properties

// Type is the JSON Schema type of a property.
type Type string

const (
	TypeAny     Type = ""
	TypeString  Type = "string"
	TypeInteger Type = "integer"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// Property is a single declared configuration key.
type Property struct {
	Default     any
	Value       any
	Name        string
	Title       string
	Description string
	Type        Type
	Required    bool
	set         bool
}

// Effective returns the value if one was set, else the default.
func (p *Property) Effective() any {
	if p.set {
		return p.Value
	}
	return p.Default
}

// IsSet reports whether a value was assigned explicitly.
func (p *Property) IsSet() bool {
	return p.set
}

// Option configures a Property at declaration time.
type Option func(*Property)

// WithTitle sets the display title.
func WithTitle(title string) Option {
	return func(p *Property) { p.Title = title }
}

// WithDescription sets the help text.
func WithDescription(description string) Option {
	return func(p *Property) { p.Description = description }
}

// WithType overrides the type inferred from the default value.
func WithType(t Type) Option {
	return func(p *Property) { p.Type = t }
}

// Required marks the property as mandatory.
func Required() Option {
	return func(p *Property) { p.Required = true }
}

func inferType(v any) Type {
	switch v.(type) {
	case string:
		return TypeString
	case bool:
		return TypeBoolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeInteger
	case float32, float64:
		return TypeNumber
	case []any, []string, []int:
		return TypeArray
	case map[string]any, map[string]string:
		return TypeObject
	default:
		return TypeAny
	}
}
