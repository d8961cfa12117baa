package debug

import (
	"encoding/json"
	"fmt"
	"os"
)

// Logf writes a formatted debug line to stderr. Document arguments (maps,
// slices and json numbers) are rendered as indented JSON.
func Logf(msg string, args ...any) {
	for i := range args {
		a := args[i]
		switch a.(type) {
		case map[string]any, []any, json.Number:
			d, err := json.MarshalIndent(a, "   |", "  ")
			if err != nil {
				args[i] = fmt.Sprintf("%v", a)
				continue
			}
			args[i] = string(d)
		case fmt.Stringer:
			args[i] = a.(fmt.Stringer).String()
		}
	}
	fmt.Fprintf(os.Stderr, msg, args...)
}
