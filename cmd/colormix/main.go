// Command colormix blends named colors given as "name1!proportion!name2[!alpha]"
// specs and prints the resulting RGBA values.
//
// Usage:
//
//	colormix [flags] [spec ...]
//
// Specs are read one per line from stdin when none are given on the
// command line.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/opd-ai/go-colormix/internal/config"
	"github.com/opd-ai/go-colormix/internal/lua"
	"github.com/opd-ai/go-colormix/internal/palette"
	"github.com/opd-ai/go-colormix/internal/profiling"
	"github.com/opd-ai/go-colormix/internal/swatch"
	"github.com/opd-ai/go-colormix/pkg/colormix"
)

// Version is the current version of colormix.
// This default value can be overridden at build time using:
//
//	go build -ldflags "-X main.Version=x.y.z"
var Version = "0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// options holds the parsed command line.
type options struct {
	configPath    string
	envFile       string
	complementary bool
	format        config.Format
	precision     int
	logLevel      string
	logJSON       bool
	swatchPath    string
	scriptPath    string
	watch         bool
	stats         bool
	convert       string
	cpuProfile    string
	memProfile    string
	version       bool

	// set records which flags were given explicitly.
	set  map[string]bool
	args []string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{
		format:    config.DefaultFormat,
		precision: config.DefaultPrecision,
		logLevel:  config.DefaultLogLevel,
		set:       make(map[string]bool),
	}

	fs := flag.NewFlagSet("colormix", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "c", "", "Path to configuration file (Lua or plain text)")
	fs.StringVar(&opts.envFile, "env", "", "Load environment variables from this file before reading -c")
	fs.BoolVar(&opts.complementary, "complementary", false, "Apply the complementary transform")
	fs.Var(&opts.format, "format", "Output format: float, hex or rgba")
	fs.IntVar(&opts.precision, "precision", config.DefaultPrecision, "Decimals printed for float channels")
	fs.StringVar(&opts.logLevel, "log-level", config.DefaultLogLevel, "Log level: debug, info, warn or error")
	fs.BoolVar(&opts.logJSON, "log-json", false, "Write logs as JSON")
	fs.StringVar(&opts.swatchPath, "swatch", "", "Write a PNG swatch sheet of the results to this file")
	fs.StringVar(&opts.scriptPath, "script", "", "Run a Lua script with blend_color and friends instead of blending specs")
	fs.BoolVar(&opts.watch, "watch", false, "Re-evaluate the specs whenever the -c file changes")
	fs.BoolVar(&opts.stats, "stats", false, "Log blend statistics on exit")
	fs.StringVar(&opts.convert, "convert", "", "Convert a plain-text config to Lua and print it to stdout")
	fs.StringVar(&opts.cpuProfile, "cpuprofile", "", "Write CPU profile to file")
	fs.StringVar(&opts.memProfile, "memprofile", "", "Write memory profile to file")
	fs.BoolVar(&opts.version, "v", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	opts.args = fs.Args()
	return opts, nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if opts.version {
		fmt.Fprintf(stdout, "colormix version %s\n", Version)
		return 0
	}

	if opts.convert != "" {
		return runConvert(opts.convert, stdout, stderr)
	}

	profConfig := profiling.Config{
		CPUProfilePath: opts.cpuProfile,
		MemProfilePath: opts.memProfile,
	}
	if profConfig.Enabled() {
		profiler := profiling.New(profConfig)
		if err := profiler.Start(); err != nil {
			fmt.Fprintf(stderr, "Failed to start profiling: %v\n", err)
			return 1
		}
		defer func() {
			if err := profiler.Stop(); err != nil {
				fmt.Fprintf(stderr, "Warning: failed to stop profiling: %v\n", err)
			}
		}()
	}

	if opts.envFile != "" {
		if err := config.LoadEnvFile(opts.envFile); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	if opts.watch && opts.configPath == "" {
		fmt.Fprintln(stderr, "-watch requires a configuration file (-c)")
		return 1
	}

	a := &app{
		opts:    opts,
		stdout:  stdout,
		stderr:  stderr,
		palette: palette.New(),
	}

	settings, err := a.loadSettings()
	if err != nil {
		fmt.Fprintf(stderr, "Error loading configuration: %v\n", err)
		return 1
	}
	a.settings = settings
	a.logger = newLogger(settings.LogLevel, opts.logJSON, stderr)
	a.metrics = colormix.NewMetrics()
	a.mixer = colormix.New(
		colormix.WithPalette(a.palette),
		colormix.WithLogger(a.logger),
		colormix.WithMetrics(a.metrics),
	)
	if opts.stats {
		a.metrics.RegisterExpvar()
		defer a.logStats()
	}

	if opts.scriptPath != "" {
		return a.runScript()
	}

	specs := opts.args
	if len(specs) == 0 {
		specs, err = readSpecs(stdin)
		if err != nil {
			fmt.Fprintf(stderr, "Error reading specs: %v\n", err)
			return 1
		}
	}
	if len(specs) == 0 {
		fmt.Fprintln(stderr, "No color specs given.")
		fmt.Fprintln(stderr, "Usage: colormix [flags] name1!proportion!name2[!alpha] ...")
		return 1
	}

	if code := a.evaluate(specs); code != 0 || !opts.watch {
		return code
	}
	return a.watch(specs)
}

// app carries the state shared by the evaluation, script and watch modes.
type app struct {
	opts     *options
	settings config.Config
	palette  *palette.Palette
	mixer    *colormix.Mixer
	metrics  *colormix.Metrics
	logger   colormix.Logger
	stdout   io.Writer
	stderr   io.Writer
}

// loadSettings reads the configuration file, if any, lets explicitly set
// flags override it, validates the result and installs its palette.
func (a *app) loadSettings() (config.Config, error) {
	settings := config.DefaultConfig()
	if a.opts.configPath != "" {
		parser, err := config.NewParser()
		if err != nil {
			return settings, err
		}
		defer parser.Close()

		cfg, err := parser.ParseFile(a.opts.configPath)
		if err != nil {
			return settings, err
		}
		settings = *cfg
	}

	a.applyFlags(&settings)

	result := config.Validate(&settings)
	for _, w := range result.Warnings {
		fmt.Fprintf(a.stderr, "Warning: %v\n", w)
	}
	if err := result.Error(); err != nil {
		return settings, err
	}

	if err := config.Apply(&settings, a.palette); err != nil {
		return settings, err
	}
	return settings, nil
}

func (a *app) applyFlags(cfg *config.Config) {
	if a.opts.set["complementary"] {
		cfg.Complementary = a.opts.complementary
	}
	if a.opts.set["format"] {
		cfg.Format = a.opts.format
	}
	if a.opts.set["precision"] {
		cfg.Precision = a.opts.precision
	}
	if a.opts.set["log-level"] {
		cfg.LogLevel = a.opts.logLevel
	}
}

func newLogger(level string, jsonOutput bool, w io.Writer) colormix.Logger {
	lvl, err := config.ParseLogLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	switch {
	case jsonOutput:
		return colormix.JSONLogger(w, lvl)
	case lvl == slog.LevelDebug:
		return colormix.DebugLogger(w)
	default:
		return colormix.LevelLogger(w, lvl)
	}
}

// evaluate blends every spec, prints the results and writes the swatch
// sheet if requested. It stops at the first failing spec.
func (a *app) evaluate(specs []string) int {
	entries := make([]swatch.Entry, 0, len(specs))
	for _, spec := range specs {
		c, err := a.mixer.Blend(spec, a.settings.Complementary)
		if err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintln(a.stdout, formatColor(c, a.settings.Format, a.settings.Precision))
		entries = append(entries, swatch.Entry{Label: spec, Color: c})
	}

	if a.opts.swatchPath != "" {
		if err := writeSwatch(a.opts.swatchPath, entries); err != nil {
			fmt.Fprintf(a.stderr, "Error writing swatch: %v\n", err)
			return 1
		}
		a.logger.Info("wrote swatch", "path", a.opts.swatchPath, "colors", len(entries))
	}
	return 0
}

func (a *app) logStats() {
	snap := a.metrics.Snapshot()
	a.logger.Info("blend statistics",
		"blends", snap.Blends,
		"failures", snap.Failures,
		"complementary", snap.Complementary,
		"lookup_failures", snap.LookupFailures,
		"config_reloads", snap.ConfigReloads,
		"avg_latency", snap.BlendLatencyAvg,
	)
}

func writeSwatch(path string, entries []swatch.Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := swatch.Render(f, entries, swatch.DefaultOptions()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (a *app) runScript() int {
	runtime, err := lua.New(lua.RuntimeConfig{
		CPULimit:    lua.DefaultConfig().CPULimit,
		MemoryLimit: lua.DefaultConfig().MemoryLimit,
		Stdout:      a.stdout,
	})
	if err != nil {
		fmt.Fprintf(a.stderr, "Error creating Lua runtime: %v\n", err)
		return 1
	}
	defer runtime.Close()

	if _, err := lua.RegisterAPI(runtime, a.mixer); err != nil {
		fmt.Fprintf(a.stderr, "Error registering Lua API: %v\n", err)
		return 1
	}
	if _, err := runtime.ExecuteFile(a.opts.scriptPath); err != nil {
		fmt.Fprintf(a.stderr, "Error running script: %v\n", err)
		return 1
	}
	return 0
}

// watch re-evaluates specs after each change to the configuration file
// and on SIGHUP, until SIGINT or SIGTERM.
func (a *app) watch(specs []string) int {
	reload := func() error {
		settings, err := a.loadSettings()
		if err != nil {
			return err
		}
		a.settings = settings
		a.metrics.IncrementConfigReloads()
		a.logger.Info("configuration reloaded", "path", a.opts.configPath)
		a.evaluate(specs)
		return nil
	}

	reloads := make(chan struct{}, 1)
	watcher, err := config.NewWatcher(a.opts.configPath, config.DefaultWatchDebounce,
		func() error {
			select {
			case reloads <- struct{}{}:
			default:
			}
			return nil
		},
		func(err error) {
			a.logger.Warn("config watcher error", "error", err)
		})
	if err != nil {
		fmt.Fprintf(a.stderr, "Error watching configuration: %v\n", err)
		return 1
	}
	watcher.Start()
	defer watcher.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-reloads:
		case sig := <-sigCh:
			if sig != syscall.SIGHUP {
				return 0
			}
		}
		if err := reload(); err != nil {
			a.logger.Error("reload failed", "error", err)
		}
	}
}

// readSpecs reads one spec per line. Blank lines and lines starting with
// '#' are skipped.
func readSpecs(r io.Reader) ([]string, error) {
	var specs []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		specs = append(specs, line)
	}
	return specs, scanner.Err()
}

// runConvert converts a plain-text config file to Lua and writes it to stdout.
func runConvert(path string, stdout, stderr io.Writer) int {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(stderr, "Configuration file not found: %s\n", path)
		} else {
			fmt.Fprintf(stderr, "Error accessing configuration file %s: %v\n", path, err)
		}
		return 1
	}

	luaContent, err := config.MigratePlainFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "Error converting configuration: %v\n", err)
		return 1
	}

	fmt.Fprint(stdout, string(luaContent))
	return 0
}
