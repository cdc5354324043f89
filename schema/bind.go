package schema

// Args holds bound, coerced argument values keyed by parameter name.
// Accessors assume the value was bound against a Param of the matching type.
type Args map[string]any

// Int returns an integer argument.
func (a Args) Int(name string) int64 {
	n, _ := a[name].(int64)
	return n
}

// Float returns a number argument.
func (a Args) Float(name string) float64 {
	f, _ := a[name].(float64)
	return f
}

// String returns a string argument.
func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Bool returns a boolean argument.
func (a Args) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}

// Bind fills each declared parameter from args or its default and coerces it
// to the declared type. A nil argument counts as absent.
func (ps Params) Bind(args map[string]any) (Args, error) {
	bound := make(Args, len(ps))

	for _, p := range ps {
		raw, ok := args[p.Name]
		if !ok || raw == nil {
			if p.Required() {
				return nil, &MissingError{Param: p.Name}
			}
			raw = p.Default
		}

		v, err := Coerce(p.Type, raw)
		if err != nil {
			if ce, isCoerce := err.(*CoercionError); isCoerce {
				ce.Param = p.Name
			}
			return nil, err
		}
		bound[p.Name] = v
	}

	return bound, nil
}
