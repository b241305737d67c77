package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wippyai/native-runtime/config"
	"github.com/wippyai/native-runtime/runtime"
)

// argList collects repeated -arg flags.
type argList []string

func (a *argList) String() string     { return strings.Join(*a, ",") }
func (a *argList) Set(v string) error { *a = append(*a, v); return nil }

type options struct {
	configFile  string
	funcName    string
	format      string
	args        argList
	list        bool
	schema      bool
	stats       bool
	interactive bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configFile, "config", "", "Path to TOML configuration")
	flag.StringVar(&opts.funcName, "func", "", "Native to call")
	flag.Var(&opts.args, "arg", "Argument to pass (repeatable; strings as-is, integers parsed, other types as JSON)")
	flag.StringVar(&opts.format, "format", "text", "Result format: text, json or cbor")
	flag.BoolVar(&opts.list, "list", false, "List natives and exit")
	flag.BoolVar(&opts.schema, "schema", false, "Print the configuration JSON schema and exit")
	flag.BoolVar(&opts.stats, "stats", false, "Print heap statistics after the call")
	flag.BoolVar(&opts.interactive, "i", false, "Interactive mode with TUI")
	flag.Parse()

	if opts.funcName == "" && !opts.list && !opts.schema && !opts.interactive {
		fmt.Fprintln(os.Stderr, "Usage: run -func <name> [-arg value ...] [-format text|json|cbor] [-config file.toml]")
		fmt.Fprintln(os.Stderr, "       run -list")
		fmt.Fprintln(os.Stderr, "       run -schema")
		fmt.Fprintln(os.Stderr, "       run -i  (interactive mode)")
		os.Exit(1)
	}

	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func run(opts options, out io.Writer) error {
	ctx := context.Background()

	if opts.schema {
		data, err := config.Schema()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		return err
	}

	rt, err := runtime.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create runtime: %w", err)
	}
	defer rt.Close(ctx)

	if opts.interactive {
		return runInteractive(rt)
	}

	p := newPrinter(out, isTerminal(out))

	if opts.list {
		p.list(rt.Functions())
		return nil
	}

	entry, ok := rt.Lookup(opts.funcName)
	if !ok {
		return fmt.Errorf("unknown native %q (use -list)", opts.funcName)
	}

	args, err := convertArgs(rt.Handle(), entry, opts.args)
	if err != nil {
		return err
	}

	result, err := rt.Call(entry.Name, args...)
	if err != nil {
		return fmt.Errorf("call %s: %w", entry.Name, err)
	}

	if err := p.result(result, opts.format); err != nil {
		return err
	}
	if opts.stats {
		p.stats(rt.Stats())
	}
	return nil
}
