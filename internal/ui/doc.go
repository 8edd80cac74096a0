// Package ui provides the styled terminal output of countertop's commands
// other than the live table itself, which is plain and uncolored.
//
// # Components
//
//	Spinner        - Status line for slow steps such as dialing a host
//	RenderSimpleTable / RenderMetricTable - Summary tables for 'check'
//	RenderColumnList - Configured columns with hidden ones marked
//	HostPicker     - Interactive choice of an ~/.ssh/config host
//
// # Color Scheme
//
// Colors are ANSI codes for broad terminal compatibility:
//
//	ColorSuccess   (green)  - Successful operations
//	ColorError     (red)    - Failures and errors
//	ColorWarning   (yellow) - Warnings
//	ColorInfo      (cyan)   - Spinner frames
//	ColorMuted     (gray)   - Secondary text, timing info
//
// DisableColors switches to monochrome output for --no-color.
package ui
