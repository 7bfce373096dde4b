package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandsRegistered(t *testing.T) {
	want := []string{"run", "elements", "policy", "reform", "load", "version"}
	for _, name := range want {
		found := false
		for _, cmd := range rootCmd.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		assert.True(t, found, "subcommand %q not registered", name)
	}
}

func TestFmtValue(t *testing.T) {
	tests := []struct {
		v    float64
		unit string
		want string
	}{
		{1030, "£", "£1030"},
		{2400, "£m", "£2400m"},
		{79.3, "£bn", "£79.3bn"},
		{84, "k", "84k"},
		{26, "%", "26%"},
		{3, "", "3"},
	}
	for _, tt := range tests {
		if got := fmtValue(tt.v, tt.unit); got != tt.want {
			t.Errorf("fmtValue(%v, %q) = %q, want %q", tt.v, tt.unit, got, tt.want)
		}
	}
}
