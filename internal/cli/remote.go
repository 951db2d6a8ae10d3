package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/opensolutionsgroup/ddi/internal/format"
	"github.com/opensolutionsgroup/ddi/internal/remote"
)

func newRemoteCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Probe remote image destinations",
	}
	cmd.PersistentFlags().IntVar(&port, "port", 0, "SSH port (default from config)")

	cmd.AddCommand(&cobra.Command{
		Use:   "ssh user@host",
		Short: "Check SSH reachability",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseTarget(args[0], effectivePort(port))
			if err != nil {
				return err
			}
			target.ConnectTimeout = connectTimeout()
			if err := remote.CheckSSH(cmd.Context(), target); err != nil {
				return err
			}
			fmt.Printf("%s@%s:%d reachable\n", target.User, target.Host, target.Port)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "nfs server:/path",
		Short: "Check an NFS export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := remote.CheckNFS(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("%s accessible\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "ls user@host:path",
		Short: "List a remote directory over SSH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, path, ok := strings.Cut(args[0], ":")
			if !ok {
				return fmt.Errorf("expected user@host:path, got %q", args[0])
			}
			target, err := parseTarget(spec, effectivePort(port))
			if err != nil {
				return err
			}
			entries, err := remote.ListDirectory(cmd.Context(), target, path)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, e := range entries {
				size := format.Bytes(e.Size)
				if e.IsDir {
					size = "<DIR>"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, size, e.Date)
			}
			return w.Flush()
		},
	})

	return cmd
}

// effectivePort resolves the SSH port: the --port flag when given,
// otherwise the configured default.
func effectivePort(flagPort int) int {
	if flagPort > 0 {
		return flagPort
	}
	if cfg, err := loadConfig(); err == nil {
		return cfg.Remote.SSHPort
	}
	return 22
}

// connectTimeout reads the configured ssh connect timeout.
func connectTimeout() time.Duration {
	if cfg, err := loadConfig(); err == nil && cfg.Remote.ConnectTimeoutMS > 0 {
		return time.Duration(cfg.Remote.ConnectTimeoutMS) * time.Millisecond
	}
	return 0
}

// parseTarget splits "user@host" with an optional ":port" suffix
// overriding the --port flag.
func parseTarget(spec string, port int) (remote.Target, error) {
	user, host, ok := strings.Cut(spec, "@")
	if !ok || user == "" || host == "" {
		return remote.Target{}, fmt.Errorf("expected user@host, got %q", spec)
	}
	if h, p, ok := strings.Cut(host, ":"); ok {
		n, err := strconv.Atoi(p)
		if err != nil {
			return remote.Target{}, fmt.Errorf("invalid port %q", p)
		}
		host, port = h, n
	}
	return remote.Target{User: user, Host: host, Port: port}, nil
}
