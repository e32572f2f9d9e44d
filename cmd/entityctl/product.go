package main

import (
	"github.com/cockroachdb/errors"
	"github.com/reuben-baek/entity-service/domain"
	"github.com/reuben-baek/entity-service/service"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newProductCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Manage products and their notifications",
	}

	var (
		name                string
		price               string
		stock, minimumStock int
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(price)
			if err != nil {
				return errors.Wrapf(err, "invalid price %q", price)
			}
			product := a.container.Products.CreateNew()
			product.Name = name
			product.Price = amount
			product.Stock = stock
			product.MinimumStock = minimumStock
			if err := a.container.Products.Save(cmd.Context(), product); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), product.ToMap())
		},
	}
	create.Flags().StringVar(&name, "name", "", "product name")
	create.Flags().StringVar(&price, "price", "0", "unit price")
	create.Flags().IntVar(&stock, "stock", 0, "units in stock")
	create.Flags().IntVar(&minimumStock, "minimum-stock", 0, "stock level that triggers a low-stock notification")
	_ = create.MarkFlagRequired("name")

	var params map[string]string
	notifyCmd := &cobra.Command{
		Use:   "notify <id> <type>",
		Short: "Add a notification to a product and publish it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			parameters := domain.Parameters{}
			for k, v := range params {
				parameters[k] = v
			}
			notification, err := a.container.Products.AddNotification(cmd.Context(), id, service.Actor{}, args[1], parameters)
			if notification != nil {
				if printErr := printJSON(cmd.OutOrStdout(), notification.ToMap()); printErr != nil {
					return printErr
				}
			}
			return err
		},
	}
	notifyCmd.Flags().StringToStringVar(&params, "param", nil, "notification parameter as key=value, repeatable")

	byNotification := &cobra.Command{
		Use:   "by-notification <notification-id>",
		Short: "Show the product holding a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			product, err := a.container.Products.GetForNotification(cmd.Context(), id)
			if err != nil {
				return err
			}
			if product == nil {
				return errors.Mark(errors.Newf("no product holds notification %d", id), service.EntityNotFoundError)
			}
			return printJSON(cmd.OutOrStdout(), product.ToMap())
		},
	}

	cmd.AddCommand(create, notifyCmd, byNotification)
	return cmd
}
