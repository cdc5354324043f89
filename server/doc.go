// Package server provides the MCP handler registry and dispatcher.
//
// Handlers are registered explicitly as Entry values, each with a kind,
// a key and declared parameters:
//
//	srv := server.New(server.Info{Name: "demo", Version: "1.0.0"})
//	err := srv.Register(server.Entry{
//	    Kind:        server.KindTool,
//	    Name:        "add",
//	    Description: "Add two integers",
//	    Params: schema.Params{
//	        {Name: "a", Type: schema.Integer},
//	        {Name: "b", Type: schema.Integer},
//	    },
//	    Returns: schema.Integer,
//	    Handler: func(ctx context.Context, args schema.Args) (any, error) {
//	        return args.Int("a") + args.Int("b"), nil
//	    },
//	})
//
// Tools and prompts are keyed by name. Resources are keyed by a URI template
// such as "greeting://{name}"; each placeholder fills one whole path segment
// and binds the parameter of the same name.
//
// # Dispatch
//
// Dispatch resolves a target, binds and coerces arguments, runs the handler
// and reports the outcome as a Result. Failures are typed:
//
//   - *NotFoundError: no entry matches the name or URI
//   - *MissingArgumentError: a required parameter has no value
//   - *TypeMismatchError: a value cannot be coerced to its declared type
//   - *HandlerError: the handler returned an error or panicked
//
// # Routing
//
// HandleRequest maps MCP JSON-RPC methods onto Dispatch and shapes the
// results. It satisfies transport.Handler, so a Server can be served
// directly or behind a middleware chain.
package server
