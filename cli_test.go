package main

import (
	"testing"

	"saturn/emu/log"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		args []string
		mode mode
	}{
		{[]string{}, runMode},
		{[]string{"--frames", "5"}, runMode},
		{[]string{"run", "--frames", "5"}, runMode},
		{[]string{"verify", "--runs", "2"}, verifyMode},
		{[]string{"config", "--force"}, configMode},
		{[]string{"version"}, versionMode},
		{[]string{"state-infos", "cli_test.go"}, stateInfosMode},
	}
	for _, tt := range tests {
		cli := parseArgs(tt.args)
		if cli.mode != tt.mode {
			t.Errorf("parseArgs(%q) mode = %d, want %d", tt.args, cli.mode, tt.mode)
		}
	}

	cli := parseArgs([]string{"verify", "--runs", "3", "--frames", "7"})
	if cli.Verify.Runs != 3 || cli.Verify.Frames != 7 {
		t.Errorf("verify args = %+v", cli.Verify)
	}
}

func TestLogFlag(t *testing.T) {
	defer log.DisableDebugModules(log.ModuleMaskAll)

	parseArgs([]string{"--log", "dma,scu", "version"})
	if !log.ModDMA.Enabled(log.DebugLevel) || !log.ModSCU.Enabled(log.DebugLevel) {
		t.Errorf("dma and scu debug logs not enabled")
	}
	if log.ModCart.Enabled(log.DebugLevel) {
		t.Errorf("cart debug logs enabled")
	}
}
