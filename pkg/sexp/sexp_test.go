package sexp

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{
			name:  "single list",
			input: "(node 42 clk0)",
			want:  []string{"(node 42 clk0)"},
		},
		{
			name:  "nested and quoted",
			input: `(node 7 "switched net" (seg 0 1 2 3 4))`,
			want:  []string{"(node 7 switched net (seg 0 1 2 3 4))"},
		},
		{
			name:  "comments skipped",
			input: "# header\n(a 1) ; trailing\n(b 2)",
			want:  []string{"(a 1)", "(b 2)"},
		},
		{
			name:  "escaped quote",
			input: `(name "a\"b")`,
			want:  []string{`(name a"b)`},
		},
		{
			name:  "empty input",
			input: "   \n",
			want:  nil,
		},
		{
			name:    "unclosed list",
			input:   "(node 1 (seg 0 1 2",
			wantErr: true,
		},
		{
			name:    "stray close",
			input:   ")",
			wantErr: true,
		},
		{
			name:  "atom at end of input",
			input: "(a)\nb",
			want:  []string{"(a)", "b"},
		},
		{
			name:  "comment at end of input",
			input: "(a) # no newline",
			want:  []string{"(a)"},
		},
		{
			name:    "unterminated string",
			input:   `(name "abc`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d expressions, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].String() != tt.want[i] {
					t.Errorf("expr %d = %q, want %q", i, got[i].String(), tt.want[i])
				}
			}
		})
	}
}

func TestListItems(t *testing.T) {
	exprs, err := Parse(strings.NewReader(`(bb 1 2 (c) "x y")`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	l, ok := exprs[0].(*List)
	if !ok {
		t.Fatalf("expected *List, got %T", exprs[0])
	}
	it := l.Items()
	if len(it) != 5 || l.IsLeaf() {
		t.Fatalf("Items() = %v, want 5 elements", it)
	}
	if it[0] != Symbol("bb") || it[4] != Symbol("x y") {
		t.Errorf("Items() = %v", it)
	}
	if it[3].IsLeaf() || it[3].String() != "(c)" {
		t.Errorf("nested list = %v", it[3])
	}
}

func TestErrorLineNumbers(t *testing.T) {
	_, err := Parse(strings.NewReader("(a 1)\n(b 2)\n(c"))
	if err == nil {
		t.Fatal("expected error for unclosed list")
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("error %q should point at line 3", err)
	}
}

func TestStrayCloseLine(t *testing.T) {
	_, err := Parse(strings.NewReader("(a\n b)\n\n)"))
	if err == nil || !strings.Contains(err.Error(), "line 4") {
		t.Errorf("error = %v, want one pointing at line 4", err)
	}
}
