// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

const testSchema = `
#Doc: {
	name?:  string
	count?: int & >=0
	tags?: [...string]
}
`

func TestDecodeMap(t *testing.T) {
	t.Parallel()

	got, err := DecodeMap(testSchema, "#Doc", []byte(`name: "x"
count: 2
`), "doc.cue")
	if err != nil {
		t.Fatalf("DecodeMap() error: %v", err)
	}
	if got["name"] != "x" {
		t.Errorf("name = %v, want x", got["name"])
	}
	if _, ok := got["tags"]; ok {
		t.Error("optional fields left out of the file should not be decoded")
	}
}

func TestDecodeMap_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     string
		contains []string
	}{
		{name: "syntax error", data: "name: \"x\n", contains: []string{"doc.cue"}},
		{name: "wrong type", data: "count: \"two\"\n", contains: []string{"doc.cue", "count"}},
		{name: "constraint violated", data: "count: -1\n", contains: []string{"count"}},
		{name: "unknown field", data: "colour: \"red\"\n", contains: []string{"colour"}},
		{name: "list element", data: "tags: [\"a\", 1]\n", contains: []string{"tags[1]"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := DecodeMap(testSchema, "#Doc", []byte(tt.data), "doc.cue")
			if err == nil {
				t.Fatal("DecodeMap() expected error, got nil")
			}
			for _, s := range tt.contains {
				if !strings.Contains(err.Error(), s) {
					t.Errorf("error %q should contain %q", err.Error(), s)
				}
			}
		})
	}
}

func TestDecodeMap_TooLarge(t *testing.T) {
	t.Parallel()

	data := []byte(strings.Repeat(" ", int(DefaultMaxFileSize)+1))
	if _, err := DecodeMap(testSchema, "#Doc", data, "big.cue"); err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("DecodeMap() error = %v, want size limit error", err)
	}
}

func TestFormatError_NonCUE(t *testing.T) {
	t.Parallel()

	if FormatError(nil, "x.cue") != nil {
		t.Error("FormatError(nil) should return nil")
	}
	cause := errors.New("some error")
	err := FormatError(cause, "x.cue")
	if err.Error() != "x.cue: some error" {
		t.Errorf("FormatError() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("non-CUE errors should stay wrapped")
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path []string
		want string
	}{
		{path: nil, want: ""},
		{path: []string{"ui"}, want: "ui"},
		{path: []string{"ui", "log_level"}, want: "ui.log_level"},
		{path: []string{"watch", "ignore", "0"}, want: "watch.ignore[0]"},
		{path: []string{"0", "name"}, want: "0.name"},
	}

	for _, tt := range tests {
		if got := formatPath(tt.path); got != tt.want {
			t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
