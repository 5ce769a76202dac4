package emu

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/kirsle/configdir"

	"saturn/emu/log"
	"saturn/hw"
	"saturn/hw/hwdefs"
	"saturn/hw/sched"
)

type Config struct {
	General   GeneralConfig   `toml:"general"`
	Emulation EmulationConfig `toml:"emulation"`
	Debug     DebugConfig     `toml:"debug"`
}

type GeneralConfig struct {
	BIOS string   `toml:"bios"` // empty runs with a zeroed BIOS
	Log  []string `toml:"log"`  // modules with debug logs enabled
}

type EmulationConfig struct {
	Standard          string `toml:"standard"`
	DMAInterruptDelay uint64 `toml:"dma_interrupt_delay"`
	DMABurst          int    `toml:"dma_burst"`
	SpriteDrawCycles  uint64 `toml:"sprite_draw_cycles"`
	Cartridge         string `toml:"cartridge"`
}

type DebugConfig struct {
	BreakOn       []string `toml:"break_on"` // event names
	BreakOnDMAEnd bool     `toml:"break_on_dma_end"`
}

func DefaultConfig() Config {
	return Config{
		Emulation: EmulationConfig{
			Standard:          hwdefs.NTSC.String(),
			DMAInterruptDelay: hw.DefaultDMAIntrDelay,
			DMABurst:          hw.DefaultDMABurst,
			Cartridge:         hw.CartNone.String(),
		},
	}
}

// Check replaces invalid settings with their default, logging a warning for
// each of them.
func (cfg *Config) Check() {
	def := DefaultConfig()
	ecfg := &cfg.Emulation

	if _, ok := hwdefs.ParseVideoStandard(ecfg.Standard); !ok {
		log.ModEmu.Warnf("Invalid video standard %q, fallback to %q", ecfg.Standard, def.Emulation.Standard)
		ecfg.Standard = def.Emulation.Standard
	}
	if ecfg.DMABurst <= 0 {
		log.ModEmu.Warnf("Invalid dma burst %d, fallback to %d", ecfg.DMABurst, def.Emulation.DMABurst)
		ecfg.DMABurst = def.Emulation.DMABurst
	}
	if ecfg.Cartridge == "" {
		ecfg.Cartridge = def.Emulation.Cartridge
	}
	if _, err := hw.ParseCartKind(ecfg.Cartridge); err != nil {
		log.ModEmu.Warnf("%v, fallback to %q", err, def.Emulation.Cartridge)
		ecfg.Cartridge = def.Emulation.Cartridge
	}

	var events []string
	for _, name := range cfg.Debug.BreakOn {
		if _, err := sched.ParseEventID(name); err != nil {
			log.ModEmu.Warnf("Ignoring break: %v", err)
			continue
		}
		events = append(events, name)
	}
	cfg.Debug.BreakOn = events

	var mods []string
	for _, name := range cfg.General.Log {
		if _, ok := log.ModuleByName(name); !ok {
			log.ModEmu.Warnf("Ignoring unknown log module %q", name)
			continue
		}
		mods = append(mods, name)
	}
	cfg.General.Log = mods
}

// HW returns the hardware configuration. cfg must have been checked.
func (cfg *Config) HW() hw.Config {
	std, _ := hwdefs.ParseVideoStandard(cfg.Emulation.Standard)
	cart, _ := hw.ParseCartKind(cfg.Emulation.Cartridge)
	return hw.Config{
		Standard:         std,
		DMAIntrDelay:     cfg.Emulation.DMAInterruptDelay,
		DMABurst:         cfg.Emulation.DMABurst,
		SpriteDrawCycles: cfg.Emulation.SpriteDrawCycles,
		Cartridge:        cart,
	}
}

// ParseLogModules converts module names into a mask. "all" enables all
// modules.
func ParseLogModules(names []string) (log.ModuleMask, error) {
	var mask log.ModuleMask
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "all" {
			mask |= log.ModuleMaskAll
			continue
		}
		mod, ok := log.ModuleByName(name)
		if !ok {
			return 0, fmt.Errorf("unknown log module %s", name)
		}
		mask |= mod.Mask()
	}
	return mask, nil
}

// ConfigDir returns the saturn configuration directory, creating it on first
// use.
var ConfigDir = sync.OnceValue(func() string {
	dir := configdir.LocalConfig("saturn")
	if err := configdir.MakePath(dir); err != nil {
		log.ModEmu.Fatalf("failed to create directory %s: %v", dir, err)
	}
	return dir
})

const cfgFilename = "config.toml"

func ConfigPath() string {
	return filepath.Join(ConfigDir(), cfgFilename)
}

// LoadConfig decodes and checks the configuration file at path. Settings
// missing from the file keep their default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return DefaultConfig(), err
	}
	for _, key := range md.Undecoded() {
		log.ModEmu.Warnf("%s: unknown setting %q", path, key.String())
	}
	cfg.Check()
	return cfg, nil
}

// LoadConfigOrDefault loads the configuration from the saturn config
// directory, or provides a default one.
func LoadConfigOrDefault() Config {
	cfg, err := LoadConfig(ConfigPath())
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.ModEmu.Warnf("Failed to load config, using defaults: %v", err)
		}
		return DefaultConfig()
	}
	return cfg
}

// SaveConfig writes cfg at path.
func SaveConfig(path string, cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}
