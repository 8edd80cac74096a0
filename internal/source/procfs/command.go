// Package procfs reads and parses the Linux /proc files host sources turn
// into counters. The same batched output is produced locally and over SSH,
// so both go through one parser.
package procfs

import (
	"strings"
)

// Separator splits the sections of a batched read.
const Separator = "---"

// Files are the /proc files a batched read prints, in section order:
// 0. /proc/stat - CPU jiffies
// 1. /proc/loadavg - Load averages
// 2. /proc/meminfo - Memory information
// 3. /proc/net/dev - Network interface statistics
var Files = []string{"/proc/stat", "/proc/loadavg", "/proc/meminfo", "/proc/net/dev"}

// Command returns a single shell command printing every file in Files,
// sections separated by Separator lines, so one SSH exec collects a sample.
func Command() string {
	parts := make([]string, len(Files))
	for i, f := range Files {
		parts[i] = "cat " + f
	}
	return strings.Join(parts, `; echo "`+Separator+`"; `)
}

// SplitSections splits batched output into its trimmed sections.
func SplitSections(output string) []string {
	sections := strings.Split(output, Separator+"\n")
	for i := range sections {
		sections[i] = strings.TrimSpace(sections[i])
	}
	return sections
}

// JoinSections is the inverse of SplitSections, used when files are read
// directly instead of through the shell.
func JoinSections(sections []string) string {
	var b strings.Builder
	for i, s := range sections {
		if i > 0 {
			b.WriteString(Separator + "\n")
		}
		b.WriteString(s)
		if !strings.HasSuffix(s, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
