package orchestrator

import "github.com/collegue/specmcp/internal/contract"

// ValidationResult is the outcome of validating an argument map against a
// tool's descriptor (spec §4.3 validate_args).
type ValidationResult struct {
	Valid       bool     `json:"valid"`
	Error       string   `json:"error,omitempty"`
	MissingArgs []string `json:"missing_args,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
}

// ValidateArgs checks args against d's required/optional argument lists.
// Unknown args become warnings rather than errors; missing required args
// are errors. The "context" key is always accepted regardless of the
// descriptor's declared argument lists, since every tool invocation may
// carry one.
func ValidateArgs(d contract.Descriptor, args map[string]any) ValidationResult {
	known := make(map[string]bool, len(d.RequiredArgs)+len(d.OptionalArgs)+1)
	known["context"] = true
	for _, a := range d.RequiredArgs {
		known[a] = true
	}
	for _, a := range d.OptionalArgs {
		known[a] = true
	}

	var missing []string
	for _, req := range d.RequiredArgs {
		if _, ok := args[req]; !ok {
			missing = append(missing, req)
		}
	}

	var warnings []string
	for k := range args {
		if !known[k] {
			warnings = append(warnings, "unknown argument: "+k)
		}
	}

	if len(missing) > 0 {
		return ValidationResult{
			Valid:       false,
			Error:       "missing required arguments",
			MissingArgs: missing,
			Warnings:    warnings,
		}
	}

	return ValidationResult{Valid: true, Warnings: warnings}
}
