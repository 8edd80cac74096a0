package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Step completed successfully
	SymbolFail     = "✗" // Step failed
	SymbolWarning  = "!" // Completed with a caveat
	SymbolPending  = "○" // Not yet started
	SymbolComplete = "●" // Done (alternative to success)
	SymbolHidden   = "⊘" // Hidden or skipped
)
