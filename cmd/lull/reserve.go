package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pders01/lull/internal/storage"
)

var reserveCmd = &cobra.Command{
	Use:   "reserve",
	Short: "Manage the reserved-name registry used by the available and match operations",
}

var reserveAddCmd = &cobra.Command{
	Use:   "add <name>...",
	Short: "Reserve one or more names",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openRegistry(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		out := cmd.OutOrStdout()
		for _, name := range args {
			res, created, err := s.store.Reserve(name)
			if err != nil {
				return err
			}
			if !created {
				fmt.Fprintf(out, "%s already reserved\n", res.Name)
				continue
			}
			if l := s.listener(); l != nil {
				if err := l.OnReserved(res.Name); err != nil {
					return fmt.Errorf("indexing %q: %w", res.Name, err)
				}
			}
			fmt.Fprintf(out, "reserved %s\n", res.Name)
		}
		return nil
	},
}

var reserveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reserved names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openRegistry(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		names, err := s.store.Names()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No names reserved.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tRESERVED")
		for _, n := range names {
			fmt.Fprintf(w, "%s\t%s\n", n.Name, n.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var reserveRemoveCmd = &cobra.Command{
	Use:   "remove <name>...",
	Short: "Release reserved names",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openRegistry(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		var missing []string
		for _, name := range args {
			if err := s.store.Release(name); err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					missing = append(missing, storage.NormalizeName(name))
					continue
				}
				return err
			}
			if l := s.listener(); l != nil {
				if err := l.OnReleased(name); err != nil {
					return fmt.Errorf("unindexing %q: %w", name, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "released %s\n", storage.NormalizeName(name))
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: %v", storage.ErrNotFound, missing)
		}
		return nil
	},
}

func openRegistry(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	s := &session{}
	if err := s.openStore(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

func init() {
	reserveCmd.AddCommand(reserveAddCmd)
	reserveCmd.AddCommand(reserveListCmd)
	reserveCmd.AddCommand(reserveRemoveCmd)
}
