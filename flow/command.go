package flow

// DefaultExecutable is the checker binary resolved from PATH when no
// explicit path is configured.
const DefaultExecutable = "flow"

// Config holds the settings that shape one checker invocation. It maps 1:1
// to the settings surface (`all`, `lib`, `show-all-errors`, `use-server`,
// `executable`, `coverage`) and is treated as immutable for the duration of
// an invocation.
type Config struct {
	// All ignores per-file @flow opt-in markers and checks everything.
	All bool
	// Libs are additional library/interface paths, passed in order.
	Libs []string
	// ShowAllErrors disables Flow's internal cap on reported errors.
	ShowAllErrors bool
	// UseServer queries an already-running flow server instead of running
	// a full one-shot check.
	UseServer bool
	// Executable overrides the checker binary location.
	Executable string
	// Coverage requests coverage warnings alongside type errors.
	Coverage bool
}

// BuildCommand returns the argv for one checker invocation. Flag order is
// deterministic for a given Config, and no flag is emitted for an unset
// option. The function performs no I/O and cannot fail.
func BuildCommand(cfg Config) []string {
	exe := cfg.Executable
	if exe == "" {
		exe = DefaultExecutable
	}

	var argv []string
	if cfg.UseServer {
		// Query the background server; never start one as a side effect.
		argv = append(argv, exe, "status", "--no-auto-start")
	} else {
		argv = append(argv, exe, "check")
	}

	if cfg.All {
		argv = append(argv, "--all")
	}
	for _, lib := range cfg.Libs {
		argv = append(argv, "--lib", lib)
	}
	if cfg.ShowAllErrors {
		argv = append(argv, "--show-all-errors")
	}
	if cfg.Coverage {
		argv = append(argv, "--coverage")
	}
	return argv
}

// BuildCoverageCommand returns the argv for a standalone coverage query
// against a single file. Flow only reports coverage as JSON, so --json is
// always included.
func BuildCoverageCommand(cfg Config, path string) []string {
	exe := cfg.Executable
	if exe == "" {
		exe = DefaultExecutable
	}
	return []string{exe, "coverage", "--path", path, "--json"}
}
