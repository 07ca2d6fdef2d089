package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"ecommerce-storefront/pkg/pricing"
	"ecommerce-storefront/storefront/internal/app"
	"ecommerce-storefront/storefront/internal/catalog"
	"ecommerce-storefront/storefront/internal/gateway"

	"github.com/spf13/cobra"
)

func table(out io.Writer, header string, rows func(w io.Writer)) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, header)
	rows(w)
	w.Flush()
}

func printProducts(out io.Writer, products []gateway.Product) {
	table(out, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK", func(w io.Writer) {
		for _, p := range products {
			fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%d\n", p.ID, p.Name, p.Category, p.Price, p.Stock)
		}
	})
}

func printOrders(out io.Writer, orders []gateway.Order) {
	table(out, "ID\tUSER\tSTATUS\tTOTAL\tCREATED", func(w io.Writer) {
		for _, o := range orders {
			created := ""
			if o.CreatedAt != nil {
				created = o.CreatedAt.Time().Format("2006-01-02 15:04")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\n", o.ID, o.UserID, o.Status, o.Total, created)
		}
	})
}

func printOrder(out io.Writer, o *gateway.Order) {
	fmt.Fprintf(out, "Order %s (%s)\n", o.ID, o.Status)
	table(out, "PRODUCT\tQTY\tUNIT\tLINE", func(w io.Writer) {
		for _, item := range o.Items {
			fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\n", item.Name, item.Quantity, item.UnitPrice, item.LineTotal)
		}
	})
	fmt.Fprintf(out, "Subtotal %.2f  Tax %.2f  Total %.2f\n", o.Subtotal, o.Tax, o.Total)
}

func parseProductID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product id %q", raw)
	}
	return id, nil
}

func optionalFloat(cmd *cobra.Command, name string) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetFloat64(name)
	return &v
}

func productsCommand(rt *runtime) *cobra.Command {
	var (
		filter   catalog.Filter
		sort     string
		page     int
		pageSize int
		all      bool
	)
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter.MinPrice = optionalFloat(cmd, "min-price")
			filter.MaxPrice = optionalFloat(cmd, "max-price")

			if all {
				products, err := rt.state.LoadAll(cmd.Context(), filter, catalog.Sort(sort))
				if err != nil {
					return err
				}
				printProducts(rt.out, products)
				return nil
			}

			resp, err := rt.state.Browse(cmd.Context(), filter, catalog.Sort(sort), page, pageSize)
			if err != nil {
				return err
			}
			printProducts(rt.out, resp.Data)
			fmt.Fprintf(rt.out, "Page %d, %d of %d products\n", resp.Page, len(resp.Data), resp.Total)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&filter.Categories, "category", nil, "only these categories (repeatable or comma separated)")
	f.Float64("min-price", 0, "minimum price")
	f.Float64("max-price", 0, "maximum price")
	f.BoolVar(&filter.InStockOnly, "in-stock", false, "only products in stock")
	f.StringVar(&filter.Search, "search", "", "search name, description and category")
	f.StringVar(&sort, "sort", "", "price_asc, price_desc, name_asc, name_desc or newest")
	f.IntVar(&page, "page", 1, "page number")
	f.IntVar(&pageSize, "page-size", 12, "products per page")
	f.BoolVar(&all, "all", false, "fetch every matching product")
	return cmd
}

func categoriesCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List product categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := rt.state.Categories(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range categories {
				fmt.Fprintln(rt.out, c)
			}
			return nil
		},
	}
}

func printCart(rt *runtime) {
	lines, totals := rt.state.CartSummary()
	if len(lines) == 0 {
		fmt.Fprintln(rt.out, "Your cart is empty")
		return
	}
	table(rt.out, "ID\tNAME\tQTY\tPRICE\tLINE", func(w io.Writer) {
		for _, l := range lines {
			line := pricing.LineTotal(l.Price, l.Quantity)
			fmt.Fprintf(w, "%d\t%s\t%d\t%.2f\t%s\n", l.ProductID, l.Name, l.Quantity, l.Price, line.StringFixed(2))
		}
	})
	fmt.Fprintf(rt.out, "Subtotal %s  Tax %s  Total %s\n",
		totals.Subtotal.StringFixed(2), totals.Tax.StringFixed(2), totals.Total.StringFixed(2))
}

func cartCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show or change the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printCart(rt)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printCart(rt)
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add one unit of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			return rt.state.AddToCart(cmd.Context(), id)
		},
	}

	set := &cobra.Command{
		Use:   "set <product-id> <quantity>",
		Short: "Set the quantity of a cart line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			return rt.state.SetCartQuantity(cmd.Context(), id, qty)
		},
	}

	remove := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			return rt.state.RemoveFromCart(cmd.Context(), id)
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.state.ClearCart(cmd.Context())
		},
	}

	cmd.AddCommand(show, add, set, remove, clearCmd)
	return cmd
}

func credentialFlags(cmd *cobra.Command, email, password *string) {
	cmd.Flags().StringVar(email, "email", "", "account email")
	cmd.Flags().StringVar(password, "password", "", "account password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
}

func signUpCommand(rt *runtime) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.state.SignUp(cmd.Context(), email, password)
		},
	}
	credentialFlags(cmd, &email, &password)
	return cmd
}

func loginCommand(rt *runtime) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.state.Login(cmd.Context(), email, password)
		},
	}
	credentialFlags(cmd, &email, &password)
	return cmd
}

func logoutCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.state.Logout(cmd.Context())
		},
	}
}

func whoAmICommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := rt.state.WhoAmI(cmd.Context())
			if err != nil {
				return err
			}
			role := "customer"
			if u.Profile != nil && u.Profile.IsAdmin {
				role = "admin"
			}
			fmt.Fprintf(rt.out, "%s (%s)\n", u.Email, role)
			return nil
		},
	}
}

func checkoutCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := rt.state.Checkout(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(rt.out, "Order %s placed: %d items, total %.2f\n", conf.OrderID, conf.ItemCount, conf.Total)
			return nil
		},
	}
}

func ordersCommand(rt *runtime) *cobra.Command {
	var page, pageSize int
	cmd := &cobra.Command{
		Use:   "orders [order-id]",
		Short: "List your orders, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				order, err := rt.state.Order(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printOrder(rt.out, order)
				return nil
			}
			resp, err := rt.state.MyOrders(cmd.Context(), page, pageSize)
			if err != nil {
				return err
			}
			printOrders(rt.out, resp.Data)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 10, "orders per page")
	return cmd
}

func adminCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Order management (admins only)",
	}

	var q gateway.AdminOrderQuery
	orders := &cobra.Command{
		Use:   "orders",
		Short: "List all orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := rt.state.AdminOrders(cmd.Context(), q)
			if err != nil {
				return err
			}
			printOrders(rt.out, resp.Data)
			fmt.Fprintf(rt.out, "Page %d, %d of %d orders\n", resp.Page, len(resp.Data), resp.Total)
			return nil
		},
	}
	f := orders.Flags()
	f.StringVar(&q.Search, "search", "", "order id or user id")
	f.StringVar(&q.Status, "status", "", strings.Join(app.OrderStatuses, ", "))
	f.StringVar(&q.Sort, "sort", "", "newest, oldest, total_desc or total_asc")
	f.IntVar(&q.Page, "page", 1, "page number")
	f.IntVar(&q.PageSize, "page-size", 20, "orders per page")

	setStatus := &cobra.Command{
		Use:       "set-status <order-id> <status>",
		Short:     "Change the status of an order",
		Args:      cobra.ExactArgs(2),
		ValidArgs: app.OrderStatuses,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := rt.state.AdminSetStatus(cmd.Context(), args[0], args[1])
			return err
		},
	}

	cmd.AddCommand(orders, setStatus)
	return cmd
}
