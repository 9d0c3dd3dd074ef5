package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/financecore/finance-core/internal/domain/auth"
)

func newLoginCmd(a *app) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "login <name>",
		Short: "Start a session with a display name and role",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := a.auth.Login(strings.Join(args, " "), auth.Role(role))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s> (%s)\n",
				profile.Name, profile.Email, profile.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", string(auth.RoleViewer),
		"one of Administrador, Gestor, Auditor, Visualizador")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.auth.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := a.auth.Current()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> role=%s initials=%s\n",
				profile.Name, profile.Email, profile.Role, profile.AvatarInitials)
			return nil
		},
	}
}

func newPermissionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "permissions",
		Short: "Inspect and edit the role permission matrix",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective grants per role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, role := range auth.AllRoles {
				grants, err := a.auth.Permissions(role)
				if err != nil {
					return err
				}
				names := make([]string, 0, len(grants))
				for _, g := range grants {
					names = append(names, string(g))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", role, strings.Join(names, ", "))
			}
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <role> <permission>...",
		Short: "Replace a role's grant set",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requirePermission(auth.PermManagePermissions); err != nil {
				return err
			}

			grants := make([]auth.Permission, 0, len(args)-1)
			for _, raw := range args[1:] {
				grants = append(grants, auth.Permission(raw))
			}
			if err := a.auth.SavePermissions(auth.Role(args[0]), grants); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (%d grants)\n", args[0], len(grants))
			return nil
		},
	}

	cmd.AddCommand(show, set)
	return cmd
}
