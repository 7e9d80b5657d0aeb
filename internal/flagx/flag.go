// Package flagx lets several config loaders share os.Args without tripping
// over each other's flags.
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs keeps only the arguments that belong to the named flags.
//
// A flag may appear as "-name value" or "-name=value". Names listed in
// switches are boolean flags: they never consume the following token, so
// "-upload list" keeps only "-upload".
//
// The result is never nil.
func FilterArgs(args []string, allowed []string, switches ...string) []string {
	known := make(map[string]bool, len(allowed)+len(switches))
	for _, f := range allowed {
		known[f] = false
	}
	for _, f := range switches {
		known[f] = true
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := known[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		isSwitch, ok := known[arg]
		if !ok {
			continue
		}
		filtered = append(filtered, arg)
		if isSwitch {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigFile returns the JSON config path given with -c or -config, or ""
// when neither is present. Other flags in args are ignored.
func ConfigFile(args []string) string {
	var path string

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config", "--config"}))

	return path
}
