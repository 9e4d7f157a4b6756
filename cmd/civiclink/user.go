package main

import (
	"fmt"

	"civiclink/pkg/api/service"
	"civiclink/pkg/models"

	"github.com/spf13/cobra"
)

func userCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts directly in the store",
	}

	cmd.AddCommand(userCreateCommand(opts), userSetRoleCommand(opts))
	return cmd
}

func userCreateCommand(opts *options) *cobra.Command {
	var (
		req  service.RegisterRequest
		role string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account with any role",
		RunE: func(cmd *cobra.Command, args []string) error {
			accounts, repo, err := opts.accounts(cmd.Context())
			if err != nil {
				return err
			}
			defer repo.Close()

			user, err := accounts.Provision(cmd.Context(), req, models.Role(role))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s) for %s\n", user.ID, user.Email, user.Role, user.FullName())
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.Email, "email", "", "account email")
	flags.StringVar(&req.Password, "password", "", "account password")
	flags.StringVar(&req.FirstName, "first-name", "", "first name")
	flags.StringVar(&req.LastName, "last-name", "", "last name")
	flags.StringVar(&req.PreferredLanguage, "language", "", "preferred language")
	flags.StringVar(&req.Community, "community", "", "community")
	flags.StringVar(&role, "role", string(models.RoleVoter), "voter, organizer, ambassador or admin")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func userSetRoleCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <email> <role>",
		Short: "Change an account's role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			accounts, repo, err := opts.accounts(cmd.Context())
			if err != nil {
				return err
			}
			defer repo.Close()

			user, err := accounts.SetRole(cmd.Context(), args[0], models.Role(args[1]))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.Email, user.Role)
			return nil
		},
	}
}
