package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"saturn/emu"
)

const version = "0.1.0"

func main() {
	args := parseArgs(os.Args[1:])

	switch args.mode {
	case runMode:
		runMain(args.Run)
	case stateInfosMode:
		checkf(stateInfosMain(os.Stdout, args.StateInfos), "failed to read save state")
	case verifyMode:
		verifyMain(args.Verify)
	case configMode:
		configMain(args.Config)
	case versionMode:
		fmt.Println("saturn", version)
	}
}

// loadConfig loads the config file at path, or the one from the user config
// directory when path is empty.
func loadConfig(path string) emu.Config {
	if path == "" {
		return emu.LoadConfigOrDefault()
	}
	cfg, err := emu.LoadConfig(path)
	checkf(err, "failed to load config")
	return cfg
}

func configMain(args ConfigCmd) {
	path := emu.ConfigPath()
	if _, err := os.Stat(path); err == nil && !args.Force {
		fatalf("%s already exists, use --force to overwrite it", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		checkf(err, "failed to stat config")
	}
	checkf(emu.SaveConfig(path, emu.DefaultConfig()), "failed to write config")
	fmt.Println("config written to", path)
}
