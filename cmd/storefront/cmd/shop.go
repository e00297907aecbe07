package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jrsteele09/go-storefront-client/guard"
	"github.com/jrsteele09/go-storefront-client/services"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the signed-in user's profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.visit("/profile", guard.RequireAuthenticated); err != nil {
			return err
		}
		u, err := current.svc.Users.GetProfile(cmd.Context())
		if err != nil {
			return current.explain(err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s <%s>\n", u.Name, u.Email)
		for _, a := range u.Addresses {
			marker := " "
			if a.IsDefault {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %s %s, %s, %s %s\n", marker, a.HouseNumber, a.Street, a.City, a.Country, a.PostalCode)
		}
		return nil
	},
}

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.visit("/cart", guard.RequireAuthenticated); err != nil {
			return err
		}
		cart, err := current.svc.Cart.Get(cmd.Context())
		if err != nil {
			return current.explain(err)
		}
		printCart(cmd.OutOrStdout(), cart)
		return nil
	},
}

var cartAddQuantity int

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.visit("/cart", guard.RequireAuthenticated); err != nil {
			return err
		}
		cart, err := current.svc.Cart.Add(cmd.Context(), args[0], cartAddQuantity)
		if err != nil {
			return current.explain(err)
		}
		printCart(cmd.OutOrStdout(), cart)
		return nil
	},
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List your orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.visit("/orders", guard.RequireAuthenticated); err != nil {
			return err
		}
		orders, err := current.svc.Orders.ListMine(cmd.Context())
		if err != nil {
			return current.explain(err)
		}
		printOrders(cmd.OutOrStdout(), orders)
		return nil
	},
}

var productsSearch string

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Browse the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		current.location.Visit(guard.ProductsPath)
		products, err := current.svc.Products.List(cmd.Context(), services.ProductQuery{Search: productsSearch})
		if err != nil {
			return err
		}
		printProducts(cmd.OutOrStdout(), products)
		return nil
	},
}

func init() {
	cartAddCmd.Flags().IntVarP(&cartAddQuantity, "quantity", "n", 1, "units to add")
	cartCmd.AddCommand(cartAddCmd)
	productsCmd.Flags().StringVarP(&productsSearch, "search", "s", "", "filter by name")

	rootCmd.AddCommand(profileCmd, cartCmd, ordersCmd, productsCmd)
}

func printCart(w io.Writer, cart *services.Cart) {
	if len(cart.Items) == 0 {
		fmt.Fprintln(w, "Cart is empty")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tSUBTOTAL")
	for _, it := range cart.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\n", it.ID, it.Name, it.Quantity, it.Subtotal())
	}
	fmt.Fprintf(tw, "\t\t%d\t%.2f\n", cart.TotalQuantity, cart.TotalPrice)
	_ = tw.Flush()
}

func printOrders(w io.Writer, orders []services.Order) {
	if len(orders) == 0 {
		fmt.Fprintln(w, "No orders yet")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tITEMS\tTOTAL\tSTATUS\tPLACED")
	for _, o := range orders {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%s\t%s\n", o.OrderNumber, len(o.Items), o.Total, o.Status, o.CreatedAt.Format("2006-01-02"))
	}
	_ = tw.Flush()
}

func printProducts(w io.Writer, products []services.Product) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%d\n", p.ID, p.Name, p.Price, p.Stock)
	}
	_ = tw.Flush()
}
