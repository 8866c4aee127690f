// Shared output helpers for waybill CLI commands.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/mesh-intelligence/waybill/pkg/types"
)

// result is the structured success/failure response emitted in JSON
// mode. Code carries the machine-readable error code on failure.
type result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// emitSuccess prints a success message, as JSON when --json is set.
func emitSuccess(message string) {
	if jsonOutput {
		out, _ := json.Marshal(result{Success: true, Message: message})
		fmt.Println(string(out))
		return
	}
	fmt.Println(message)
}

// emitFailure prints a failure response to stderr with its error code.
func emitFailure(err error) {
	if jsonOutput {
		out, _ := json.Marshal(result{
			Success: false,
			Message: err.Error(),
			Code:    types.ErrorCode(err),
		})
		fmt.Fprintln(os.Stderr, string(out))
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s (%s)\n", err, types.ErrorCode(err))
}

// emitJSON pretty-prints a value as JSON.
func emitJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// parseID parses a positive record ID argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", arg, err)
	}
	return id, nil
}
