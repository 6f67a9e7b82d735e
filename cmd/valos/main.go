package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"valos-cli/internal/cli"
)

func isLeadID(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	// Leading zeros never appear in backend ids.
	return s[0] != '0'
}

// persistentFlagArity reports, for each persistent flag spelling the root
// command accepts, whether the flag consumes the token after it. Bool flags
// don't; everything else does.
func persistentFlagArity(cmd *cobra.Command) map[string]bool {
	arity := make(map[string]bool)
	cmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		takesValue := f.Value.Type() != "bool"
		arity["--"+f.Name] = takesValue
		if f.Shorthand != "" {
			arity["-"+f.Shorthand] = takesValue
		}
	})
	return arity
}

// rewriteLeadShorthand expands `valos 42` into `valos leads show 42`. Cobra
// resolves the first positional token as a subcommand name, so the expansion
// has to happen on argv before parsing starts. Persistent flags may precede
// the id; flagTakesValue tells the scan which of them swallow the following
// token, so a flag value that happens to be numeric is never mistaken for a
// lead id.
func rewriteLeadShorthand(argv []string, flagTakesValue map[string]bool) []string {
	insert := func(at int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:at]...)
		out = append(out, "leads", "show")
		return append(out, argv[at:]...)
	}

	for i := 1; i < len(argv); i++ {
		tok := strings.TrimSpace(argv[i])
		switch {
		case tok == "":
		case tok == "--":
			// Everything after the terminator is positional.
			if i+1 < len(argv) && isLeadID(argv[i+1]) {
				return insert(i + 1)
			}
			return argv
		case strings.HasPrefix(tok, "-"):
			name, _, inline := strings.Cut(tok, "=")
			if !inline && flagTakesValue[name] {
				i++
			}
		case isLeadID(tok):
			return insert(i)
		default:
			// First positional token is a real subcommand.
			return argv
		}
	}
	return argv
}

func main() {
	cmd := cli.NewRootCmd()
	os.Args = rewriteLeadShorthand(os.Args, persistentFlagArity(cmd))
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
