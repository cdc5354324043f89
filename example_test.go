package mcp_test

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-demo"
	"github.com/felixgeelhaar/mcp-demo/schema"
	"github.com/felixgeelhaar/mcp-demo/server"
)

// Example registers the extended demo surface and calls a tool directly.
func Example() {
	srv, err := mcp.NewDemoServer(mcp.ServerInfo{Name: "Demo", Version: "1.0.0"}, mcp.Extended)
	if err != nil {
		fmt.Println(err)
		return
	}

	res := srv.Dispatch(context.Background(), server.KindTool, "fibonacci", map[string]any{"n": 8})
	text, err := res.Text()
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(text)
	// Output: [0,1,1,2,3,5,8,13]
}

// ExampleNewServer registers a custom tool next to nothing else.
func ExampleNewServer() {
	srv := mcp.NewServer(mcp.ServerInfo{Name: "server", Version: "1.0.0"})

	err := srv.Register(mcp.Entry{
		Kind:        server.KindTool,
		Name:        "shout",
		Description: "Upper-case a word",
		Params: schema.Params{
			{Name: "word", Type: schema.String},
		},
		Returns: schema.String,
		Handler: func(ctx context.Context, args schema.Args) (any, error) {
			return fmt.Sprintf("%s!", args.String("word")), nil
		},
	})
	if err != nil {
		fmt.Println(err)
		return
	}

	res := srv.Dispatch(context.Background(), server.KindTool, "shout", map[string]any{"word": "hey"})
	fmt.Println(res.Value)
	// Output: hey!
}

// ExampleDefaultMiddleware shows the recommended middleware stack.
func ExampleDefaultMiddleware() {
	srv, _ := mcp.NewDemoServer(mcp.ServerInfo{Name: "server", Version: "1.0.0"}, mcp.Basic)

	var logger mcp.Logger // any implementation; nil logs nothing
	h := mcp.Handler(srv, mcp.WithMiddleware(mcp.DefaultMiddleware(logger)...))

	// mcp.ServeStdio(ctx, srv, mcp.WithMiddleware(mcp.DefaultMiddleware(logger)...))
	fmt.Println(h != nil)
	// Output: true
}
