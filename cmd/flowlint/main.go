// Command flowlint wraps the Flow type checker: it builds the checker
// invocation from settings, runs it against a project root or single file,
// parses the output into diagnostics, and renders them.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/dkoosis/flowlint/flow"
	"github.com/dkoosis/flowlint/internal/config"
	"github.com/dkoosis/flowlint/internal/render"
	"github.com/dkoosis/flowlint/internal/runner"
	"github.com/dkoosis/flowlint/internal/tui"
	"github.com/dkoosis/flowlint/internal/version"
)

// Exit codes. Diagnostics found is a normal outcome distinct from the
// wrapper itself failing.
const (
	exitClean    = 0
	exitFindings = 1
	exitFailure  = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the application logic and returns the exit code. Kept
// separate from main so tests can invoke it without os.Exit.
func run(args []string) int {
	flags, target, versionFlag, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitClean
		}
		return exitFailure
	}

	if versionFlag {
		fmt.Printf("flowlint version %s\n", version.Version)
		fmt.Printf("Commit: %s\n", version.CommitHash)
		fmt.Printf("Built: %s\n", version.BuildDate)
		return exitClean
	}

	settings := config.Merge(config.Load(), flags)
	if settings.Format != render.FormatPretty && settings.Format != render.FormatJSON {
		fmt.Fprintf(os.Stderr, "Error: invalid value for --format: %s\nValid values are: pretty, json\n", settings.Format)
		return exitFailure
	}

	root, file, err := resolveTarget(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFailure
	}

	// Pragma gate: a single-file target without the @flow marker is not
	// checked at all unless `all` is set. That is the success case, not
	// an error.
	if file != "" && !settings.Flow.All {
		src, readErr := os.ReadFile(file)
		if readErr != nil {
			fmt.Fprintf(os.Stderr, "Error: reading %s: %v\n", file, readErr)
			return exitFailure
		}
		if !flow.HasPragma(src) {
			debugf(settings.Debug, "run", "no @flow pragma in %s, skipping", file)
			r := render.New(os.Stdout, renderConfig(settings))
			_ = r.Render(nil, 0)
			return exitClean
		}
	}

	check := makeCheck(settings, root, file)

	if settings.Watch {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := tui.Run(ctx, tui.Config{Check: check, Interval: settings.Interval, Label: root}); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitFailure
		}
		return exitClean
	}

	diags, duration, err := check(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, exec.ErrNotFound) {
			return runner.ExitCodeNotFound
		}
		return exitFailure
	}

	r := render.New(os.Stdout, renderConfig(settings))
	if err := r.Render(diags, duration); err != nil {
		fmt.Fprintf(os.Stderr, "Error: writing output: %v\n", err)
		return exitFailure
	}

	if errs, _ := render.Count(diags); errs > 0 {
		return exitFindings
	}
	return exitClean
}

// makeCheck builds the one-invocation closure shared by the one-shot path
// and watch mode: build argv, spawn, parse, optionally merge coverage.
func makeCheck(settings config.Settings, root, file string) tui.CheckFunc {
	return func(parent context.Context) ([]flow.Diagnostic, time.Duration, error) {
		ctx, cancel := context.WithTimeout(parent, settings.Timeout)
		defer cancel()

		argv := flow.BuildCommand(settings.Flow)
		if settings.FlowJSON {
			argv = append(argv, "--json")
		}
		debugf(settings.Debug, "check", "argv: %v (dir %s)", argv, root)

		run := runner.New(runner.Options{Dir: root, Debug: settings.Debug})
		result, err := run.Run(ctx, argv)
		if err != nil {
			return nil, result.Duration, err
		}
		debugf(settings.Debug, "check", "exit %d, %d bytes stdout", result.ExitCode, len(result.Stdout))

		// Non-zero exit is how the checker says it found something; the
		// parse of stdout is the answer either way.
		diags := flow.Parse(result.Stdout)
		duration := result.Duration

		// A standalone coverage query only exists for single-file
		// targets; flow only reports coverage as JSON.
		if settings.Flow.Coverage && settings.FlowJSON && file != "" {
			covArgv := flow.BuildCoverageCommand(settings.Flow, file)
			debugf(settings.Debug, "check", "coverage argv: %v", covArgv)
			covResult, covErr := run.Run(ctx, covArgv)
			if covErr == nil {
				diags = append(diags, flow.ParseCoverageJSON(covResult.Stdout)...)
				duration += covResult.Duration
			} else {
				debugf(settings.Debug, "check", "coverage query failed: %v", covErr)
			}
		}

		return diags, duration, nil
	}
}

func renderConfig(settings config.Settings) render.Config {
	return render.Config{
		Format: settings.Format,
		Color:  !settings.NoColor && render.IsTerminal(os.Stdout),
	}
}

// stringList collects repeated flag values in order.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func parseFlags(args []string) (config.Flags, string, bool, error) {
	var flags config.Flags
	var libs stringList
	var versionFlag bool

	fs := flag.NewFlagSet("flowlint", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: flowlint [flags] [path]")
		fmt.Fprintln(fs.Output(), "\npath is a project root directory (default \".\") or a single .js file.")
		fmt.Fprintln(fs.Output(), "\nFlags:")
		fs.PrintDefaults()
	}

	fs.BoolVar(&versionFlag, "version", false, "Print flowlint version and exit.")
	fs.BoolVar(&versionFlag, "v", false, "Print flowlint version and exit (shorthand).")
	fs.BoolVar(&flags.All, "all", false, "Check all files, not just those with the @flow pragma.")
	fs.Var(&libs, "lib", "Additional library/interface path (repeatable, order preserved).")
	fs.BoolVar(&flags.ShowAllErrors, "show-all-errors", false, "Disable Flow's cap on reported errors.")
	fs.BoolVar(&flags.UseServer, "use-server", false, "Query a running flow server instead of a one-shot check (never auto-starts one).")
	fs.StringVar(&flags.Executable, "executable", "", "Path to the flow binary (default: flow from PATH).")
	fs.BoolVar(&flags.Coverage, "coverage", false, "Request coverage warnings alongside type errors.")
	fs.BoolVar(&flags.FlowJSON, "flow-json", false, "Ask flow for JSON output (stable across flow releases).")
	fs.StringVar(&flags.Format, "format", "", "Output format: pretty or json.")
	fs.BoolVar(&flags.NoColor, "no-color", false, "Disable ANSI color output.")
	fs.DurationVar(&flags.Timeout, "timeout", 0, "Timeout per checker invocation (default 30s).")
	fs.BoolVar(&flags.Watch, "watch", false, "Re-run the check on an interval in a terminal UI.")
	fs.DurationVar(&flags.Interval, "interval", 0, "Re-check interval in watch mode (default 2s).")
	fs.BoolVar(&flags.Debug, "debug", false, "Enable debug output.")

	if err := fs.Parse(args); err != nil {
		return flags, "", false, err
	}
	flags.Libs = libs

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "all":
			flags.AllSet = true
		case "show-all-errors":
			flags.ShowAllErrorsSet = true
		case "use-server":
			flags.UseServerSet = true
		case "coverage":
			flags.CoverageSet = true
		case "flow-json":
			flags.FlowJSONSet = true
		case "no-color":
			flags.NoColorSet = true
		case "timeout":
			flags.TimeoutSet = true
		case "debug":
			flags.DebugSet = true
		}
	})

	return flags, fs.Arg(0), versionFlag, nil
}

// resolveTarget maps the positional argument to (projectRoot, singleFile).
// A directory is a project root; a regular file is checked from its own
// directory with the pragma gate applied.
func resolveTarget(target string) (root, file string, err error) {
	if target == "" {
		target = "."
	}

	info, err := os.Stat(target)
	if err != nil {
		return "", "", fmt.Errorf("target %s: %w", target, err)
	}
	if info.IsDir() {
		return target, "", nil
	}
	return filepath.Dir(target), target, nil
}

func debugf(enabled bool, fn, format string, args ...any) {
	if !enabled {
		return
	}
	fmt.Fprintf(os.Stderr, "[DEBUG "+fn+"] "+format+"\n", args...)
}
