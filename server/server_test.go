package server

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/mcp-demo/schema"
)

func echo(ctx context.Context, args schema.Args) (any, error) {
	return args.String("text"), nil
}

func TestKind(t *testing.T) {
	for _, k := range []Kind{KindTool, KindResource, KindPrompt} {
		got, err := ParseKind(k.String())
		if err != nil {
			t.Fatalf("ParseKind(%q) error = %v", k, err)
		}
		if got != k {
			t.Errorf("ParseKind(%q) = %v", k, got)
		}
	}

	if _, err := ParseKind("widget"); err == nil {
		t.Error("ParseKind(widget) expected error")
	}
	if s := Kind(9).String(); s != "kind(9)" {
		t.Errorf("Kind(9).String() = %q", s)
	}
}

func TestServer_Register(t *testing.T) {
	tests := []struct {
		name    string
		entry   Entry
		wantErr bool
	}{
		{
			name:  "tool",
			entry: Entry{Kind: KindTool, Name: "echo", Params: schema.Params{{Name: "text", Type: schema.String}}, Handler: echo},
		},
		{
			name:  "resource",
			entry: Entry{Kind: KindResource, URITemplate: "echo://{text}", Params: schema.Params{{Name: "text", Type: schema.String}}, Handler: echo},
		},
		{
			name:  "prompt",
			entry: Entry{Kind: KindPrompt, Name: "echo", Handler: echo},
		},
		{
			name:    "invalid kind",
			entry:   Entry{Name: "echo", Handler: echo},
			wantErr: true,
		},
		{
			name:    "empty name",
			entry:   Entry{Kind: KindTool, Handler: echo},
			wantErr: true,
		},
		{
			name:    "nil handler",
			entry:   Entry{Kind: KindTool, Name: "echo"},
			wantErr: true,
		},
		{
			name: "duplicate param",
			entry: Entry{Kind: KindTool, Name: "echo", Handler: echo, Params: schema.Params{
				{Name: "text", Type: schema.String},
				{Name: "text", Type: schema.String},
			}},
			wantErr: true,
		},
		{
			name: "default not coercible",
			entry: Entry{Kind: KindTool, Name: "echo", Handler: echo, Params: schema.Params{
				{Name: "n", Type: schema.Integer, Default: "many"},
			}},
			wantErr: true,
		},
		{
			name:    "unknown return type",
			entry:   Entry{Kind: KindTool, Name: "echo", Handler: echo, Returns: "date"},
			wantErr: true,
		},
		{
			name:    "bad template",
			entry:   Entry{Kind: KindResource, URITemplate: "echo", Handler: echo},
			wantErr: true,
		},
		{
			name:    "undeclared placeholder",
			entry:   Entry{Kind: KindResource, URITemplate: "echo://{text}", Handler: echo},
			wantErr: true,
		},
		{
			name: "bad mime type",
			entry: Entry{Kind: KindResource, URITemplate: "echo://{text}", MimeType: "not a type", Handler: echo,
				Params: schema.Params{{Name: "text", Type: schema.String}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(Info{Name: "test", Version: "1.0.0"})
			err := srv.Register(tt.entry)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Register() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && !srv.Has(tt.entry.Kind) {
				t.Errorf("Has(%s) = false after Register", tt.entry.Kind)
			}
		})
	}
}

func TestServer_RegisterDuplicate(t *testing.T) {
	srv := New(Info{Name: "test"})

	if err := srv.Register(Entry{Kind: KindTool, Name: "echo", Handler: echo}); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	err := srv.Register(Entry{Kind: KindTool, Name: "echo", Handler: echo})
	var dup *DuplicateNameError
	if !errors.As(err, &dup) {
		t.Fatalf("Register() error = %v, want *DuplicateNameError", err)
	}
	if dup.Kind != KindTool || dup.Name != "echo" {
		t.Errorf("DuplicateNameError = %+v", dup)
	}

	t.Run("kinds have separate keyspaces", func(t *testing.T) {
		if err := srv.Register(Entry{Kind: KindPrompt, Name: "echo", Handler: echo}); err != nil {
			t.Errorf("prompt with tool's name: %v", err)
		}
		err := srv.Register(Entry{
			Kind:        KindResource,
			Name:        "echo",
			URITemplate: "echo://static",
			Handler:     echo,
		})
		if err != nil {
			t.Errorf("resource with tool's display name: %v", err)
		}
	})

	t.Run("resources are keyed by template", func(t *testing.T) {
		err := srv.Register(Entry{Kind: KindResource, Name: "other", URITemplate: "echo://static", Handler: echo})
		if !errors.As(err, &dup) {
			t.Errorf("Register() error = %v, want *DuplicateNameError", err)
		}
	})
}

func TestServer_RegisterAll(t *testing.T) {
	srv := New(Info{Name: "test"})

	err := srv.RegisterAll(
		Entry{Kind: KindTool, Name: "a", Handler: echo},
		Entry{Kind: KindTool, Name: "a", Handler: echo},
		Entry{Kind: KindTool, Name: "b", Handler: echo},
	)
	if err == nil {
		t.Fatal("RegisterAll() expected error")
	}
	if _, ok := srv.Lookup(KindTool, "b"); ok {
		t.Error("RegisterAll() should stop at the first failure")
	}
}

func TestServer_Entries(t *testing.T) {
	srv := New(Info{Name: "test"})
	names := []string{"zeta", "alpha", "mid"}
	for _, name := range names {
		if err := srv.Register(Entry{Kind: KindTool, Name: name, Handler: echo}); err != nil {
			t.Fatal(err)
		}
	}

	entries := srv.Entries(KindTool)
	if len(entries) != len(names) {
		t.Fatalf("Entries() len = %d, want %d", len(entries), len(names))
	}
	for i, e := range entries {
		if e.Name != names[i] {
			t.Errorf("Entries()[%d] = %q, want %q", i, e.Name, names[i])
		}
	}

	if got := srv.Entries(KindPrompt); len(got) != 0 {
		t.Errorf("Entries(prompt) = %v, want empty", got)
	}
	if srv.Has(KindPrompt) {
		t.Error("Has(prompt) = true on empty keyspace")
	}
}

func TestServer_ResourceDefaults(t *testing.T) {
	srv := New(Info{Name: "test"})
	err := srv.Register(Entry{
		Kind:        KindResource,
		URITemplate: "echo://{text}",
		Params:      schema.Params{{Name: "text", Type: schema.String}},
		Handler:     echo,
	})
	if err != nil {
		t.Fatal(err)
	}

	e, ok := srv.Lookup(KindResource, "echo://{text}")
	if !ok {
		t.Fatal("Lookup() found nothing")
	}
	if e.Name != "echo://{text}" {
		t.Errorf("Name = %q, want the template", e.Name)
	}
	if e.MimeType != "text/plain" {
		t.Errorf("MimeType = %q, want text/plain", e.MimeType)
	}
}
