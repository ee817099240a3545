package commands

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"passlink/internal/domain"
	"passlink/internal/store"
)

func storeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the credential database",
	}
	cmd.AddCommand(storeInitCmd(), storeAddCmd(), storeListCmd())
	return cmd
}

func storeInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an empty credential database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			exists, err := wire.Files.Exists()
			if err != nil {
				return err
			}
			if exists && !force {
				return fmt.Errorf("%s already exists (use --force to replace it)", wire.Files.Path())
			}
			if err := wire.Files.Save(passphrase, store.NewDatabase("Root")); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database created at %s\n", wire.Files.Path())
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing database")
	return cmd
}

func storeAddCmd() *cobra.Command {
	var (
		e     domain.Entry
		group string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.Title == "" {
				return errors.New("--title is required")
			}
			db, err := openDatabase()
			if err != nil {
				return err
			}
			gid, err := ensureGroupPath(db, group)
			if err != nil {
				return err
			}
			saved, err := db.AddEntry(gid, e)
			if err != nil {
				return err
			}
			if err := wire.Files.Save(passphrase, db); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", saved.Title, saved.UUIDHex())
			return nil
		},
	}
	cmd.Flags().StringVar(&e.Title, "title", "", "entry title")
	cmd.Flags().StringVar(&e.Username, "username", "", "login name")
	cmd.Flags().StringVar(&e.Password, "password", "", "password")
	cmd.Flags().StringVar(&e.URL, "url", "", "primary URL")
	cmd.Flags().StringSliceVar(&e.AdditionalURLs, "additional-url", nil, "extra URL (repeatable)")
	cmd.Flags().StringVar(&group, "group", "", `group path below the root, e.g. "Internet/Dev"`)
	return cmd
}

// ensureGroupPath walks "A/B/C" from the root, creating missing groups.
func ensureGroupPath(db *store.Database, path string) (domain.GroupID, error) {
	cur := db.Root()
	for _, name := range strings.Split(path, "/") {
		if name == "" {
			continue
		}
		if g, ok := db.FindGroup(cur, name); ok {
			cur = g.ID
			continue
		}
		g, err := db.AddGroup(cur, name)
		if err != nil {
			return cur, err
		}
		cur = g.ID
	}
	return cur, nil
}

func storeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List searchable credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase()
			if err != nil {
				return err
			}
			entries, err := db.Entries()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PATH\tUSERNAME\tURL\tUUID")
			for _, e := range entries {
				path, err := db.GroupPath(e.Group)
				if err != nil {
					return err
				}
				full := strings.Join(append(path, e.Title), "/")
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", full, e.Username, e.URL, e.UUIDHex())
			}
			return tw.Flush()
		},
	}
}
