package main

import (
	"github.com/reuben-baek/entity-service/domain"
	"github.com/spf13/cobra"
)

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var name, email string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user := a.container.Users.CreateNew()
			user.Name = name
			user.Email = email
			if err := a.container.Users.Save(cmd.Context(), user); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), user.ToMap())
		},
	}
	create.Flags().StringVar(&name, "name", "", "user name")
	create.Flags().StringVar(&email, "email", "", "user email")
	_ = create.MarkFlagRequired("name")

	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := a.container.Users.GetAll(cmd.Context())
			if err != nil {
				return err
			}
			return printEntities[*domain.User](cmd.OutOrStdout(), users)
		},
	}

	cmd.AddCommand(create, list)
	return cmd
}
