package sshutil

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/kevinburke/ssh_config"
)

// Environment overrides, mostly for CI.
const (
	EnvSSHUser = "COUNTERTOP_SSH_USER"
	EnvSSHKey  = "COUNTERTOP_SSH_KEY"
)

// matchWarningOnce ensures the Match directive warning is only logged once per process.
var matchWarningOnce sync.Once

// sshSettings holds resolved SSH connection parameters.
type sshSettings struct {
	hostname      string
	port          string
	user          string
	identityFile  string
	encryptedKeys []string // Keys that exist but are encrypted
}

func (s *sshSettings) address() string {
	return net.JoinHostPort(s.hostname, s.port)
}

// resolveSettings parses user@host:port and fills the gaps from ~/.ssh/config.
func resolveSettings(host string) *sshSettings {
	settings := &sshSettings{
		port: "22",
		user: currentUser(),
	}

	explicitUser := false
	if at := strings.Index(host, "@"); at != -1 {
		settings.user = host[:at]
		host = host[at+1:]
		explicitUser = true
	}
	if !explicitUser {
		if u := os.Getenv(EnvSSHUser); u != "" {
			settings.user = u
		}
	}

	if colon := strings.LastIndex(host, ":"); colon != -1 && isPort(host[colon+1:]) {
		settings.port = host[colon+1:]
		host = host[:colon]
	}
	settings.hostname = host

	cfg, matchLine, err := loadSSHConfig(filepath.Join(homeDir(), ".ssh", "config"))
	if err != nil {
		return settings
	}

	found := false
	if v, _ := cfg.Get(host, "HostName"); v != "" {
		settings.hostname = v
		found = true
	}
	if v, _ := cfg.Get(host, "Port"); v != "" {
		settings.port = v
		found = true
	}
	if v, _ := cfg.Get(host, "User"); v != "" && !explicitUser {
		settings.user = v
		found = true
	}
	if v, _ := cfg.Get(host, "IdentityFile"); v != "" {
		settings.identityFile = expandPath(v)
		found = true
	}

	// The host might be defined after a Match block we had to cut off.
	if matchLine > 0 && !found {
		matchWarningOnce.Do(func() {
			Log.Warn("host '%s' not found in SSH config; a Match block at line %d may hide later entries", host, matchLine)
		})
	}

	return settings
}

func isPort(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// loadSSHConfig decodes an ssh config file. ssh_config can't parse Match
// directives, so everything from the first Match on is dropped and its line
// number returned.
func loadSSHConfig(path string) (*ssh_config.Config, int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}

	lines := strings.Split(string(content), "\n")
	matchLine := 0
	for i, line := range lines {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "match ") {
			matchLine = i + 1
			lines = lines[:i]
			break
		}
	}

	cfg, err := ssh_config.Decode(bytes.NewReader([]byte(strings.Join(lines, "\n"))))
	if err != nil {
		return nil, matchLine, err
	}
	return cfg, matchLine, nil
}

// HostEntry is a concrete host alias from ~/.ssh/config.
type HostEntry struct {
	Alias    string
	Hostname string
	User     string
	Port     string
}

// Description returns a short summary for pickers, e.g. "10.0.0.5, user: pi".
func (h HostEntry) Description() string {
	var parts []string
	if h.Hostname != "" && h.Hostname != h.Alias {
		parts = append(parts, h.Hostname)
	}
	if h.User != "" {
		parts = append(parts, "user: "+h.User)
	}
	if h.Port != "" && h.Port != "22" {
		parts = append(parts, "port: "+h.Port)
	}
	if len(parts) == 0 {
		return h.Alias
	}
	return strings.Join(parts, ", ")
}

// Hosts lists the concrete aliases in ~/.ssh/config, sorted.
func Hosts() ([]HostEntry, error) {
	return HostsFromFile(filepath.Join(homeDir(), ".ssh", "config"))
}

// HostsFromFile lists the concrete aliases in an ssh config file, skipping
// wildcard patterns. A missing file yields no hosts and no error.
func HostsFromFile(path string) ([]HostEntry, error) {
	cfg, _, err := loadSSHConfig(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var hosts []HostEntry
	seen := make(map[string]bool)
	for _, host := range cfg.Hosts {
		for _, pattern := range host.Patterns {
			alias := pattern.String()
			if strings.ContainsAny(alias, "*?!") || seen[alias] {
				continue
			}
			seen[alias] = true

			entry := HostEntry{Alias: alias}
			entry.Hostname, _ = cfg.Get(alias, "HostName")
			entry.User, _ = cfg.Get(alias, "User")
			entry.Port, _ = cfg.Get(alias, "Port")
			hosts = append(hosts, entry)
		}
	}

	sort.Slice(hosts, func(i, j int) bool { return hosts[i].Alias < hosts[j].Alias })
	return hosts, nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

func currentUser() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "root"
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}
