// Package schema describes handler parameters and binds request arguments to them.
//
// A handler declares its parameters as an ordered Params list. Each Param has
// a name, a declared Type and an optional default; a Param without a default
// is required:
//
//	params := schema.Params{
//	    {Name: "name", Type: schema.String, Description: "Who to greet"},
//	    {Name: "style", Type: schema.String, Default: "friendly"},
//	}
//
// # Binding
//
// Bind fills every declared parameter from the supplied arguments, falling
// back to defaults, and coerces each value to its declared type:
//
//	args, err := params.Bind(map[string]any{"name": "Bob"})
//	// args.String("style") == "friendly"
//
// A required parameter with no value yields a *MissingError; a value that
// cannot be coerced yields a *CoercionError. Unknown arguments are ignored.
//
// # Coercion
//
// Integers accept JSON integers, integral floats, json.Number and decimal
// strings (URI placeholders always arrive as strings). Numbers accept any
// numeric value or numeric string. Booleans accept bools and the strings
// understood by strconv.ParseBool. Strings, objects and arrays are strict.
//
// # Publication
//
// JSONSchema renders the list as the JSON Schema object advertised in
// tools/list, using github.com/google/jsonschema-go.
package schema
