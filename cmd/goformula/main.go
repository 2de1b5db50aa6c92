// Command goformula evaluates a formula against a JSON or YAML context and
// prints the result as JSON.
//
// Usage:
//
//	goformula [-context data.yaml] [-no-ext] 'price * quantity > 100 ? "bulk" : "unit"'
//	echo '{"x": 2}' | goformula 'x + 1'
//
// When no -context file is given and stdin is not a terminal, the context is
// read from stdin (JSON or YAML). The extension function library (@sum,
// @upper, @uuid, ...) is registered unless -no-ext is passed.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/sandrolain/goformula"
	"github.com/sandrolain/goformula/pkg/evaluator"
	"github.com/sandrolain/goformula/pkg/ext"
)

func main() {
	contextPath := flag.String("context", "", "JSON or YAML file with the variable context")
	noExt := flag.Bool("no-ext", false, "do not register the extension function library")
	compact := flag.Bool("compact", false, "always print compact JSON output")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	source := flag.Arg(0)

	context, err := loadContext(*contextPath)
	if err != nil {
		fatal(err)
	}

	state := evaluator.NewState(context, nil)
	if !*noExt {
		state = ext.Register(state)
	}

	result, err := goformula.Eval(source, state)
	if err != nil {
		fatal(err)
	}

	if err := printResult(result, *compact); err != nil {
		fatal(err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: goformula [flags] 'formula'\n\n")
	fmt.Fprintf(os.Stderr, "Evaluates a formula against a JSON/YAML context and prints the result.\n\n")
	flag.PrintDefaults()
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "goformula:", err)
	os.Exit(1)
}

// loadContext reads the variable context from a file or, failing that, from
// stdin when stdin is piped. YAML is a superset of JSON here, so .json files
// and JSON on stdin decode through the same path.
func loadContext(path string) (map[string]interface{}, error) {
	var data []byte
	var err error

	switch {
	case path != "":
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read context file: %w", err)
		}
		if suffix := strings.ToLower(filepath.Ext(path)); suffix != ".yaml" && suffix != ".yml" && suffix != ".json" {
			return nil, fmt.Errorf("unsupported context file extension: %s", suffix)
		}
	case !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()):
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
	default:
		return nil, nil // no context; formulas over literals still work
	}

	if len(data) == 0 {
		return nil, nil
	}

	var context map[string]interface{}
	if err := yaml.Unmarshal(data, &context); err != nil {
		return nil, fmt.Errorf("parse context: %w", err)
	}
	return normalizeNumbers(context), nil
}

// normalizeNumbers converts YAML integers to float64 so the context matches
// the evaluator's numeric model.
func normalizeNumbers(m map[string]interface{}) map[string]interface{} {
	for k, v := range m {
		m[k] = normalizeValue(v)
	}
	return m
}

func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	case map[string]interface{}:
		return normalizeNumbers(t)
	case []interface{}:
		for i, item := range t {
			t[i] = normalizeValue(item)
		}
		return t
	default:
		return v
	}
}

// printResult writes the result as JSON: indented on a terminal, compact
// otherwise (or when -compact is passed).
func printResult(result interface{}, compact bool) error {
	var out []byte
	var err error
	if !compact && isatty.IsTerminal(os.Stdout.Fd()) {
		out, err = json.MarshalIndent(result, "", "  ")
	} else {
		out, err = json.Marshal(result)
	}
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = fmt.Println(string(out))
	return err
}
