package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/countertop/internal/config"
	"github.com/rileyhilliard/countertop/internal/errors"
	"github.com/rileyhilliard/countertop/internal/source"
	"github.com/rileyhilliard/countertop/internal/source/procfs"
	"github.com/rileyhilliard/countertop/internal/ui"
	"github.com/rileyhilliard/countertop/pkg/sshutil"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	SSH            string    // Remote host to poll in addition to localhost
	Overwrite      bool      // Overwrite existing config without asking
	NonInteractive bool      // Skip prompts and the host picker
	Dir            string    // Directory to write to, default "."
	Out            io.Writer // Default os.Stdout
}

const configHeader = `# countertop configuration
# Run 'countertop check --preview' to see the table, 'countertop watch' to go live.

`

// probeHost reads /proc once over SSH to prove a host source will work.
var probeHost = func(ctx context.Context, host string) error {
	r := procfs.NewSSHReader(host, source.DialTimeout)
	defer r.Close()
	out, err := r.Read(ctx)
	if err != nil {
		return err
	}
	_, err = procfs.Parse(out, time.Now())
	return err
}

// Init writes a starter countertop.yaml, optionally with a remote host source.
func Init(opts InitOptions) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	configPath := filepath.Join(dir, config.ConfigFileName)

	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	sshHost := opts.SSH
	if sshHost == "" && !opts.NonInteractive {
		hosts, err := sshutil.Hosts()
		if err != nil {
			fmt.Fprintf(out, "%s Couldn't read ~/.ssh/config: %v\n", ui.SymbolWarning, err)
		}
		if len(hosts) > 0 {
			picked, err := ui.PickHost(hosts)
			if err != nil {
				return errors.WrapWithCode(err, errors.ErrConfig,
					"Failed to get user input",
					"Pass --ssh <host> instead")
			}
			if picked != nil {
				sshHost = picked.Alias
			}
		}
	}

	if sshHost != "" {
		ok, err := checkRemote(out, sshHost, opts.NonInteractive)
		if err != nil {
			return err
		}
		if !ok {
			sshHost = ""
		}
	}

	cfg := config.StarterConfig()
	if err := writeStarter(configPath, cfg); err != nil {
		return err
	}

	if sshHost != "" {
		remote := config.SourceConfig{
			Name:     remoteSourceName(sshHost),
			Type:     config.SourceHost,
			SSH:      sshHost,
			Counters: cfg.Sources[0].Counters,
		}
		if err := config.AddSource(configPath, remote); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Failed to add host '%s' to %s", sshHost, configPath),
				"Add it under 'sources' by hand")
		}
	}

	fmt.Fprintf(out, "%s Created %s\n\n", ui.SuccessStyle().Render(ui.SymbolSuccess), configPath)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  countertop check --preview  - See the table layout")
	fmt.Fprintln(out, "  countertop watch            - Show live counters")
	return nil
}

// checkRemote probes host under a spinner. It reports whether the host
// should be added.
func checkRemote(out io.Writer, host string, nonInteractive bool) (bool, error) {
	spinner := ui.NewSpinner("Reading /proc on " + host)
	spinner.SetOutput(out)
	spinner.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 2*source.DialTimeout)
	defer cancel()
	err := probeHost(ctx, host)
	if err == nil {
		spinner.Success()
		return true, nil
	}
	spinner.Fail()

	fail := errors.WrapWithCode(err, errors.ErrSSH,
		fmt.Sprintf("Connection to '%s' failed", host),
		"Check that the host is reachable: ssh "+host)
	if nonInteractive {
		return false, fail
	}

	fmt.Fprintf(out, "\n%s Connection to '%s' failed: %v\n\n", ui.SymbolFail, host, err)
	var addAnyway bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Add it anyway? (You can fix the connection later)").
				Value(&addAnyway),
		),
	)
	if formErr := form.Run(); formErr != nil {
		return false, fail
	}
	return addAnyway, nil
}

func writeStarter(path string, cfg *config.Config) error {
	if err := config.Save(path, cfg); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", path),
			"Check directory permissions")
	}
	data, err := os.ReadFile(path)
	if err == nil {
		err = os.WriteFile(path, append([]byte(configHeader), data...), 0644)
	}
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", path),
			"Check directory permissions")
	}
	return nil
}

// remoteSourceName derives a source name from an ssh target:
// "deploy@build-01:2222" becomes "build-01".
func remoteSourceName(host string) string {
	if i := strings.LastIndex(host, "@"); i >= 0 {
		host = host[i+1:]
	}
	if h, _, ok := strings.Cut(host, ":"); ok && h != "" {
		host = h
	}
	if host == "" || host == "localhost" {
		return "remote"
	}
	return host
}

func initCommand(opts InitOptions) error {
	return Init(opts)
}
