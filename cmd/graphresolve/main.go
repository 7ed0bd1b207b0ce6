// Command graphresolve is a small driver around the resolver package: it
// reads a wire-format document (spec.md §6's @id/@ref/@type/@keys/@items
// JSON shape), resolves it, and prints the reconstructed graph. Grounded on
// the teacher's cmd/protograph/main.go: a root flag.FlagSet dispatching to
// one flag.FlagSet per subcommand, each with its own usage string.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"reflect"
	"strings"

	resolver "github.com/openbindings/graphresolve"
	"github.com/openbindings/graphresolve/internal/eventbus"
	"github.com/openbindings/graphresolve/internal/events"
	"github.com/openbindings/graphresolve/internal/node"
	"github.com/openbindings/graphresolve/internal/otelresolve"
)

const rootUsage = `graphresolve — deserialization graph resolver CLI

USAGE:
  graphresolve <command> [flags]

COMMANDS:
  resolve   Resolve a wire-format document and print the resulting graph
  help      Show help for any command
`

const resolveUsage = `resolve FLAGS:
  -in <file>             Input document, "-" for stdin (default: -)
  -mode <mode>           json-objects (default) or go-objects
  -coerce From=To        Substitute declared type From with To. Repeatable
  -otel.endpoint <addr>  OTLP collector endpoint
  -otel.service <name>   OpenTelemetry service name (default: graphresolve)
  -verbose               Log patch/rehash/missing-field counts to stderr

go-objects mode has no built-in type registry (this binary has no way to
name a compiled Go struct from a command line), so every type lookup fails
and resolution in that mode ends with an error; json-objects needs no
registration at all.
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flagSetSilent("graphresolve")
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "resolve":
		return cmdResolve(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "resolve":
		fmt.Print(resolveUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type coerceFlag map[string]string

func (c coerceFlag) String() string { return "" }

func (c coerceFlag) Set(v string) error {
	parts := strings.SplitN(v, "=", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("invalid -coerce %q, want From=To", v)
	}
	c[parts[0]] = parts[1]
	return nil
}

func cmdResolve(args []string) error {
	in := "-"
	mode := "json-objects"
	otelEndpoint := ""
	otelService := "graphresolve"
	verbose := false
	coerced := coerceFlag{}

	fs := flagSetSilent("resolve")
	fs.StringVar(&in, "in", in, "Input document")
	fs.StringVar(&mode, "mode", mode, "json-objects or go-objects")
	fs.Var(coerced, "coerce", "Substitute declared type From with To")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	fs.BoolVar(&verbose, "verbose", verbose, "Log patch/rehash/missing-field counts")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, resolveUsage)
		return err
	}

	var resolveMode resolver.Mode
	switch mode {
	case "json-objects":
		resolveMode = resolver.ModeJSONObjects
	case "go-objects":
		resolveMode = resolver.ModeGoObjects
	default:
		return fmt.Errorf("unknown -mode %q", mode)
	}

	data, err := readInput(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	var root node.Node
	if err := json.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("parse document: %w", err)
	}

	eventbus.Use(eventbus.New())
	shutdown, err := otelresolve.Setup(otelEndpoint, otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()
	if verbose {
		registerVerboseLogging()
	}

	r := resolver.New(resolver.Options{
		Mode:           resolveMode,
		CoercedClasses: coerced,
	})

	result, err := r.Resolve(context.Background(), &root, nil)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(toJSONValue(result), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func registerVerboseLogging() {
	eventbus.Subscribe(func(_ context.Context, e events.PatchPass) {
		log.Printf("patch pass: resolved=%d err=%v", e.Resolved, e.Err)
	})
	eventbus.Subscribe(func(_ context.Context, e events.RehashPass) {
		log.Printf("rehash pass: containers=%d err=%v", e.Containers, e.Err)
	})
	eventbus.Subscribe(func(_ context.Context, e events.MissingFieldReported) {
		log.Printf("missing field: type=%s field=%s", e.TargetType, e.Field)
	})
	eventbus.Subscribe(func(_ context.Context, e events.ScalarProbeFailed) {
		log.Printf("scalar probe failed: type=%s err=%v", e.TargetType, e.Err)
	})
}

// toJSONValue renders a resolved value back into plain
// maps/slices/scalars that encoding/json can print, recursing through the
// generic *JSONObject shape json-objects mode produces, []any slices, and
// Go maps (re-keyed by fmt.Sprint of each key). Any other value, such as a
// go-objects struct, is handed to json.Marshal as-is.
func toJSONValue(v any) any {
	switch t := v.(type) {
	case *resolver.JSONObject:
		m := make(map[string]any, len(t.Keys()))
		for _, k := range t.Keys() {
			val, _ := t.Get(k)
			m[k] = toJSONValue(val)
		}
		return m
	case []any:
		items := make([]any, len(t))
		for i, e := range t {
			items[i] = toJSONValue(e)
		}
		return items
	default:
		rv := reflect.ValueOf(v)
		if rv.IsValid() && rv.Kind() == reflect.Map {
			m := make(map[string]any, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				m[fmt.Sprint(iter.Key().Interface())] = toJSONValue(iter.Value().Interface())
			}
			return m
		}
		return v
	}
}

func flagSetSilent(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer)) // silence automatic usage output; we print our own
	return fs
}
