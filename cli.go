package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"saturn/emu"
	"saturn/emu/log"
)

type mode byte

const (
	runMode        mode = iota // Run the emulator headless
	stateInfosMode             // Show save state infos
	verifyMode                 // Check emulation determinism
	configMode                 // Write the default config
	versionMode                // Show version
)

type (
	CLI struct {
		Run        Run        `cmd:"" help:"Run the emulator headless. (default command)" default:"withargs"`
		StateInfos StateInfos `cmd:"" help:"Show save state infos." name:"state-infos"`
		Verify     Verify     `cmd:"" help:"Run several machines in parallel and check they end in the same state."`
		Config     ConfigCmd  `cmd:"" help:"Write the default configuration file."`
		Version    Version    `cmd:"" help:"Show version."`

		Log logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`

		mode mode
	}

	Run struct {
		Frames     int      `name:"frames" help:"Number of frames to run." default:"60"`
		BIOS       string   `name:"bios" help:"${bios_help}" type:"existingfile"`
		Cartridge  string   `name:"cart" help:"Cartridge to insert (none, dram8, dram32, backup)."`
		ConfigPath string   `name:"config" help:"${config_help}" type:"existingfile"`
		LoadState  string   `name:"load-state" help:"Start from this save state." type:"existingfile"`
		SaveState  string   `name:"save-state" help:"Write a save state when done." type:"path"`
		CPUProfile string   `name:"cpuprofile" help:"${cpuprofile_help}" type:"path"`
		Trace      *outfile `name:"trace" help:"Write a break trace log." placeholder:"FILE|stdout|stderr"`
	}

	StateInfos struct {
		Path string `arg:"" name:"/path/to/state" type:"existingfile"`
		JSON bool   `name:"json" help:"Output JSON."`
	}

	Verify struct {
		Frames     int    `name:"frames" help:"Number of frames to run." default:"10"`
		Runs       int    `name:"runs" help:"Number of machines." default:"4"`
		ConfigPath string `name:"config" help:"${config_help}" type:"existingfile"`
		LoadState  string `name:"load-state" help:"Start from this save state." type:"existingfile"`
	}

	ConfigCmd struct {
		Force bool `name:"force" help:"Overwrite an existing file."`
	}

	Version struct{}
)

var vars = kong.Vars{
	"bios_help":       "BIOS image, overrides the configuration.",
	"config_help":     "Configuration file. (default: user config directory)",
	"cpuprofile_help": "Write CPU profile to directory.",
	"log_help":        "Enable logging for specified modules.",
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("saturn"),
		kong.Description("Saturn timing and addressing core."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	switch ctx.Command() {
	case "state-infos </path/to/state>":
		cfg.mode = stateInfosMode
	case "verify":
		cfg.mode = verifyMode
	case "config":
		cfg.mode = configMode
	case "version":
		cfg.mode = versionMode
	default:
		cfg.mode = runMode
	}
	return cfg
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if strings.HasPrefix(ctx.Command(), "run") {
		loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
		var strs []string
		for _, m := range log.ModuleNames() {
			strs = append(strs, "    - "+m)
		}

		fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	}

	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm logModMask) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	names := strings.Split(tok.Value.(string), ",")

	if len(names) == 1 && names[0] == "no" {
		log.Disable()
		return nil
	}
	for _, name := range names {
		if name == "no" {
			return fmt.Errorf("cannot combine 'no' with other log modules")
		}
	}

	mask, err := emu.ParseLogModules(names)
	if err != nil {
		return err
	}
	emu.SetupLogging(mask)
	return nil
}

type outfile struct {
	w     io.Writer
	name  string
	close func() error
}

// Decode decodes FILE|stdout|stderr into an io.WriteCloser
// that writes to that file.
//
// Implements kong.MapperValue interface.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	f.name = tok.Value.(string)
	f.close = func() error { return nil }

	switch f.name {
	case "stdout":
		f.w = os.Stdout
	case "stderr":
		f.w = os.Stderr
	default:
		fd, err := os.Create(f.name)
		if err != nil {
			return err
		}
		f.w = fd
		f.close = fd.Close
	}
	return nil
}

func (f *outfile) String() string              { return f.name }
func (f *outfile) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *outfile) Close() error                { return f.close() }

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
