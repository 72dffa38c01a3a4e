package main

import (
	"errors"
	"testing"
)

func TestParseCommonFlags(t *testing.T) {
	t.Setenv("SEARCHAGENT_CONFIG", "")

	tests := []struct {
		name     string
		args     []string
		wantPath string
		wantRest []string
	}{
		{"default", nil, "config.yaml", nil},
		{"separate value", []string{"--config", "/etc/s.yaml", "x"}, "/etc/s.yaml", []string{"x"}},
		{"equals form", []string{"a", "--config=/tmp/c.yaml"}, "/tmp/c.yaml", []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags, rest, err := parseCommonFlags(tt.args)
			if err != nil {
				t.Fatalf("parseCommonFlags: %v", err)
			}
			if flags.ConfigPath != tt.wantPath {
				t.Errorf("ConfigPath = %q, want %q", flags.ConfigPath, tt.wantPath)
			}
			if len(rest) != len(tt.wantRest) {
				t.Fatalf("rest = %v, want %v", rest, tt.wantRest)
			}
			for i := range rest {
				if rest[i] != tt.wantRest[i] {
					t.Errorf("rest[%d] = %q, want %q", i, rest[i], tt.wantRest[i])
				}
			}
		})
	}
}

func TestParseCommonFlagsEnvFallback(t *testing.T) {
	t.Setenv("SEARCHAGENT_CONFIG", "/srv/searchagent.yaml")

	flags, _, err := parseCommonFlags(nil)
	if err != nil {
		t.Fatal(err)
	}
	if flags.ConfigPath != "/srv/searchagent.yaml" {
		t.Errorf("ConfigPath = %q", flags.ConfigPath)
	}
}

func TestParseCommonFlagsMissingValue(t *testing.T) {
	if _, _, err := parseCommonFlags([]string{"--config"}); err == nil {
		t.Error("expected error for --config without a path")
	}
}

func TestParseQueryFlags(t *testing.T) {
	flags, err := parseQueryFlags([]string{"--goal", "plan a trip", "--render", "weather", "in", "Lisbon"})
	if err != nil {
		t.Fatalf("parseQueryFlags: %v", err)
	}
	if flags.Goal != "plan a trip" || !flags.Render {
		t.Errorf("flags = %+v", flags)
	}
	if flags.Query != "weather in Lisbon" {
		t.Errorf("Query = %q", flags.Query)
	}
}

func TestParseQueryFlagsDoubleDash(t *testing.T) {
	flags, err := parseQueryFlags([]string{"--goal=x", "--", "--render", "is", "a", "flag?"})
	if err != nil {
		t.Fatalf("parseQueryFlags: %v", err)
	}
	if flags.Render {
		t.Error("--render after -- is query text")
	}
	if flags.Query != "--render is a flag?" {
		t.Errorf("Query = %q", flags.Query)
	}
	if flags.Goal != "x" {
		t.Errorf("Goal = %q", flags.Goal)
	}
}

func TestParseQueryFlagsKeepsWhitespace(t *testing.T) {
	flags, err := parseQueryFlags([]string{"  spaced  "})
	if err != nil {
		t.Fatal(err)
	}
	if flags.Query != "  spaced  " {
		t.Errorf("Query = %q, want untouched text", flags.Query)
	}
}

func TestParseQueryFlagsErrors(t *testing.T) {
	if _, err := parseQueryFlags(nil); !errors.Is(err, errNoQuery) {
		t.Errorf("no text: err = %v, want errNoQuery", err)
	}
	if _, err := parseQueryFlags([]string{"  "}); !errors.Is(err, errNoQuery) {
		t.Errorf("blank text: err = %v, want errNoQuery", err)
	}
	if _, err := parseQueryFlags([]string{"--goal"}); err == nil {
		t.Error("expected error for --goal without value")
	}
	if _, err := parseQueryFlags([]string{"--verbose", "q"}); err == nil {
		t.Error("expected error for unknown flag")
	}
}
