package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// Commands that take raw arguments carry rawArgsKey in their annotations.
// The value says where root flags may appear among those arguments.
const (
	rawArgsKey      = "shellkit.raw-args"
	rawArgsLeading  = "leading"
	rawArgsAnywhere = "anywhere"
)

// rootFlags is the result of pulling --log-level and --config out of raw
// arguments.
type rootFlags struct {
	rest       []string
	logLevel   string
	configPath string
	levelSet   bool
	configSet  bool
}

// splitRootFlags extracts the persistent root flags from the arguments of a
// command with flag parsing disabled. With rawArgsLeading only flags before
// the first other argument are taken, so `dev t --config jest.config.js`
// still forwards --config to the script. Nothing after "--" is touched.
func splitRootFlags(cmd *cobra.Command, args []string) (rootFlags, error) {
	anywhere := cmd.Annotations[rawArgsKey] == rawArgsAnywhere

	var rf rootFlags
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			rf.rest = append(rf.rest, args[i:]...)
			break
		}
		name, value, hasValue := strings.Cut(strings.TrimPrefix(a, "--"), "=")
		if !strings.HasPrefix(a, "--") || (name != "log-level" && name != "config") {
			if !anywhere {
				rf.rest = append(rf.rest, args[i:]...)
				break
			}
			rf.rest = append(rf.rest, a)
			continue
		}
		if !hasValue {
			if i+1 >= len(args) {
				return rootFlags{}, fmt.Errorf("flag needs an argument: --%s", name)
			}
			i++
			value = args[i]
		}
		if name == "log-level" {
			rf.logLevel, rf.levelSet = value, true
		} else {
			rf.configPath, rf.configSet = value, true
		}
	}
	return rf, nil
}
