// Package demo holds the toy tools, resources and prompts served by
// mcp-demo, grouped into two variants.
//
// The basic variant serves add, multiply, divide and ping, the greeting
// resource and the greet_user prompt. The extended variant swaps divide for
// word_count and fibonacci, and adds the quote resource and the
// summarize_text prompt.
//
// Entries are plain server.Entry tables; nothing registers itself:
//
//	srv := server.New(server.Info{Name: "Demo", Version: "1.0.0"})
//	if err := demo.Register(srv, demo.Basic); err != nil {
//	    log.Fatal(err)
//	}
package demo
