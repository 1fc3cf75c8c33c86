// SPDX-License-Identifier: MPL-2.0

package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string // JSON encoding of the decoded value
	}{
		{name: "empty input", in: "", want: "null"},
		{name: "comment only", in: "# nothing here\n", want: "null"},
		{name: "scalar", in: "hello\n", want: `"hello"`},
		{name: "mapping", in: "name: group\norder: 2\n", want: `{"name":"group","order":2}`},
		{name: "sequence", in: "- a\n- 1\n- true\n- null\n", want: `["a",1,true,null]`},
		{name: "nested", in: "a:\n  b:\n    - c: 1\n", want: `{"a":{"b":[{"c":1}]}}`},
		{name: "integer keys", in: "1: one\n2: two\n", want: `{"1":"one","2":"two"}`},
		{name: "bool and null keys", in: "true: yes\n~: none\n", want: `{"null":"none","true":"yes"}`},
		{name: "float key", in: "1.5: x\n2.0: y\n", want: `{"1.5":"x","2.0":"y"}`},
		{name: "nested non-string keys", in: "outer:\n  3: three\n", want: `{"outer":{"3":"three"}}`},
		{name: "timestamp stays a string", in: "when: 2001-12-14\n", want: `{"when":"2001-12-14"}`},
		{name: "datetime keeps its spelling", in: "at: 2001-12-14t21:59:43.10-05:00\n", want: `{"at":"2001-12-14t21:59:43.10-05:00"}`},
		{name: "timestamp key", in: "2020-01-01: x\n", want: `{"2020-01-01":"x"}`},
		{name: "timestamp in sequence", in: "- 2020-01-01\n- 2020-01-02 10:00:00\n", want: `["2020-01-01","2020-01-02 10:00:00"]`},
		{name: "largest uint64", in: "u: 18446744073709551615\n", want: `{"u":18446744073709551615}`},
		{name: "integer wider than 64 bits", in: "n: 123456789012345678901234567890\n", want: `{"n":123456789012345678901234567890}`},
		{name: "negative wide integer with separators", in: "n: -1_000_000_000_000_000_000_000\n", want: `{"n":-1000000000000000000000}`},
		{name: "hex integer wider than 64 bits", in: "h: 0xFFFFFFFFFFFFFFFFFFFF\n", want: `{"h":1208925819614629174706175}`},
		{name: "wide integer key", in: "123456789012345678901234567890: x\n", want: `{"123456789012345678901234567890":"x"}`},
		{name: "quoted digits stay a string", in: "s: \"123456789012345678901234567890\"\n", want: `{"s":"123456789012345678901234567890"}`},
		{name: "explicit string tag", in: "v: !!str 123\n", want: `{"v":"123"}`},
		{name: "unknown tag keeps text", in: "v: !custom hello\n", want: `{"v":"hello"}`},
		{name: "binary text", in: "b: !!binary aGVsbG8=\n", want: `{"b":"hello"}`},
		{name: "alias", in: "a: &x [1, 2]\nb: *x\n", want: `{"a":[1,2],"b":[1,2]}`},
		{name: "alias key", in: "k: &k name\n*k : v\n", want: `{"k":"name","name":"v"}`},
		{
			name: "merge key with override",
			in:   "base: &b {x: 1, y: 2}\nderived:\n  <<: *b\n  y: 3\n",
			want: `{"base":{"x":1,"y":2},"derived":{"x":1,"y":3}}`,
		},
		{
			name: "earlier merge source wins",
			in:   "a: &a {k: 1}\nb: &b {k: 2, m: 2}\nc:\n  <<: [*a, *b]\n",
			want: `{"a":{"k":1},"b":{"k":2,"m":2},"c":{"k":1,"m":2}}`,
		},
		{name: "explicit document marker", in: "---\nk: v\n", want: `{"k":"v"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Decode([]byte(tt.in))
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			encoded, err := json.Marshal(got)
			if err != nil {
				t.Fatalf("json.Marshal() error: %v", err)
			}
			if string(encoded) != tt.want {
				t.Errorf("Decode() = %s, want %s", encoded, tt.want)
			}
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		wantErr error // nil means any error is acceptable
	}{
		{name: "syntax error", in: "key: [unclosed\n"},
		{name: "nested mapping on one line", in: "a: b: c\n"},
		{name: "two documents", in: "a: 1\n---\nb: 2\n", wantErr: ErrMultipleDocuments},
		{name: "second document malformed", in: "a: 1\n---\nb: [\n"},
		{name: "sequence key", in: "? [a, b]\n: value\n"},
		{name: "colliding keys", in: "0x1: hex\n\"1\": string\n", wantErr: ErrDuplicateKey},
		{name: "repeated key", in: "a: 1\na: 2\n", wantErr: ErrDuplicateKey},
		{name: "repeated nested key", in: "outer:\n  k: 1\n  k: 1\n", wantErr: ErrDuplicateKey},
		{name: "binary that is not text", in: "b: !!binary //79\n", wantErr: ErrInvalidBinary},
		{name: "malformed binary", in: "b: !!binary '%%%'\n"},
		{name: "explicit int that is not a number", in: "n: !!int abc\n"},
		{name: "mapping key", in: "? {a: 1}\n: value\n", wantErr: ErrUnsupportedKey},
		{name: "merge of a scalar", in: "a:\n  <<: 1\n", wantErr: ErrInvalidMerge},
		{name: "merge of an aliased sequence", in: "s: &s [1]\nm:\n  <<: *s\n", wantErr: ErrInvalidMerge},
		{name: "recursive alias", in: "a: &x [*x]\n", wantErr: ErrRecursiveAlias},
		{name: "infinite value", in: "x: .inf\n", wantErr: ErrNonFiniteNumber},
		{name: "nan in sequence", in: "- 1\n- .nan\n", wantErr: ErrNonFiniteNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decode([]byte(tt.in))
			if err == nil {
				t.Fatal("Decode() expected error, got nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecode_AliasExpansionLimit(t *testing.T) {
	t.Parallel()

	// Nine levels of ten aliases each expand to over a hundred million values.
	var doc strings.Builder
	doc.WriteString("l0: &l0 [x, x, x, x, x, x, x, x, x, x]\n")
	for i := 1; i < 9; i++ {
		prev := fmt.Sprintf("*l%d", i-1)
		fmt.Fprintf(&doc, "l%d: &l%d [%s]\n", i, i, strings.Repeat(prev+", ", 9)+prev)
	}

	_, err := Decode([]byte(doc.String()))
	if !errors.Is(err, ErrAliasExpansion) {
		t.Fatalf("Decode() error = %v, want %v", err, ErrAliasExpansion)
	}
}

func TestDecode_ErrorLocation(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte("items:\n  - ok: 1\n  - bad: .nan\n"))
	if err == nil {
		t.Fatal("Decode() expected error, got nil")
	}
	if got, want := err.Error(), "items[1].bad: non-finite number"; got != want {
		t.Errorf("Decode() error = %q, want %q", got, want)
	}
}

func TestKeyString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key     any
		want    string
		wantErr bool
	}{
		{key: "plain", want: "plain"},
		{key: nil, want: "null"},
		{key: false, want: "false"},
		{key: 42, want: "42"},
		{key: int64(-7), want: "-7"},
		{key: uint64(18446744073709551615), want: "18446744073709551615"},
		{key: 3.0, want: "3.0"},
		{key: 0.25, want: "0.25"},
		{key: 1e20, want: "1e+20"},
		{key: json.Number("123456789012345678901234567890"), want: "123456789012345678901234567890"},
		{key: []any{"a"}, wantErr: true},
	}

	for _, tt := range tests {
		got, err := keyString(tt.key)
		if (err != nil) != tt.wantErr {
			t.Errorf("keyString(%#v) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("keyString(%#v) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
