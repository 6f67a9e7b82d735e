package main

import (
	"reflect"
	"testing"

	"valos-cli/internal/cli"
)

func TestPersistentFlagArity(t *testing.T) {
	t.Parallel()

	arity := persistentFlagArity(cli.NewRootCmd())
	for flag, takesValue := range map[string]bool{
		"--api-url": true,
		"--format":  true,
		"--pretty":  false,
		"--offline": false,
	} {
		got, ok := arity[flag]
		if !ok {
			t.Fatalf("flag %s missing from arity map %v", flag, arity)
		}
		if got != takesValue {
			t.Fatalf("arity[%s] = %v, want %v", flag, got, takesValue)
		}
	}
}

func TestRewriteLeadShorthand(t *testing.T) {
	t.Parallel()

	flags := persistentFlagArity(cli.NewRootCmd())

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"valos"},
			want: []string{"valos"},
		},
		{
			name: "direct lead id first token",
			in:   []string{"valos", "42"},
			want: []string{"valos", "leads", "show", "42"},
		},
		{
			name: "numeric flag value not mistaken for an id",
			in:   []string{"valos", "--api-url", "http://localhost:8000", "42"},
			want: []string{"valos", "--api-url", "http://localhost:8000", "leads", "show", "42"},
		},
		{
			name: "direct lead id after equals flag",
			in:   []string{"valos", "--format=csv", "42"},
			want: []string{"valos", "--format=csv", "leads", "show", "42"},
		},
		{
			name: "direct lead id after bool flag",
			in:   []string{"valos", "--pretty", "42"},
			want: []string{"valos", "--pretty", "leads", "show", "42"},
		},
		{
			name: "unknown flag does not swallow the id",
			in:   []string{"valos", "--verbose", "42"},
			want: []string{"valos", "--verbose", "leads", "show", "42"},
		},
		{
			name: "direct lead id after double dash",
			in:   []string{"valos", "--offline", "--", "42"},
			want: []string{"valos", "--offline", "--", "leads", "show", "42"},
		},
		{
			name: "normal subcommand not rewritten",
			in:   []string{"valos", "leads", "show", "42"},
			want: []string{"valos", "leads", "show", "42"},
		},
		{
			name: "unknown command not rewritten",
			in:   []string{"valos", "wat"},
			want: []string{"valos", "wat"},
		},
		{
			name: "leading zero not treated as id",
			in:   []string{"valos", "007"},
			want: []string{"valos", "007"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteLeadShorthand(tt.in, flags)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteLeadShorthand:\n got: %#v\nwant: %#v", got, tt.want)
			}
		})
	}
}
