package main

import (
	"strings"
	"testing"
)

func TestParseVolumeArg(t *testing.T) {
	for _, tt := range []struct {
		arg  string
		want volumeOp
	}{
		{"50", volumeOp{kind: volumeSet, amount: 50}},
		{"0", volumeOp{kind: volumeSet, amount: 0}},
		{"100", volumeOp{kind: volumeSet, amount: 100}},
		{"+5", volumeOp{kind: volumeUp, amount: 5}},
		{"-5", volumeOp{kind: volumeDown, amount: 5}},
		{"+100", volumeOp{kind: volumeUp, amount: 100}},
	} {
		t.Run(tt.arg, func(t *testing.T) {
			op, err := parseVolumeArg(tt.arg)
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if op != tt.want {
				t.Errorf("parseVolumeArg(%q) = %+v, want %+v", tt.arg, op, tt.want)
			}
		})
	}
}

func TestVolumeCommand_KeepsRelativeArgsOffTheFlagParser(t *testing.T) {
	// "volume -5" must reach parseVolumeArg; the flag parser would reject
	// "-5" as an unknown shorthand before the command body runs.
	if !volumeCmd.DisableFlagParsing {
		t.Fatal("flag parsing must be disabled on the volume command")
	}
}

func TestParseVolumeArg_Invalid(t *testing.T) {
	for _, tt := range []struct {
		arg     string
		wantErr string
	}{
		{"loud", "not a valid number"},
		{"101", "between 0 and 100"},
		{"-101", "between 0 and 100"},
		{"+", "increase the volume by"},
		{"-", "decrease the volume by"},
		{"++5", "not a valid number"},
		{"", "not a valid number"},
	} {
		t.Run(tt.arg, func(t *testing.T) {
			_, err := parseVolumeArg(tt.arg)
			if err == nil {
				t.Fatalf("expected an error for %q", tt.arg)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should contain %q", err, tt.wantErr)
			}
		})
	}
}
