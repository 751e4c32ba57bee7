package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/camellia/internal/model"
)

// ProductOptions holds flags shared by the product subcommands.
type ProductOptions struct {
	*RootOptions
	Category    string
	Search      string
	ID          string
	Name        string
	Price       string
	Description string
	Stock       int
}

// NewProductsCommand creates the products command group.
func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List and manage catalog products",
	}

	cmd.AddCommand(newProductsListCommand(rootOpts))
	cmd.AddCommand(newProductsAddCommand(rootOpts))
	cmd.AddCommand(newProductsUpdateCommand(rootOpts))
	cmd.AddCommand(newProductsRemoveCommand(rootOpts))
	return cmd
}

func newProductsListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProductOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products, optionally filtered by category or keyword",
		Long: `List catalog products.

--search matches the keyword against name and description, ignoring case.

Example:
  camellia products list --category MINUMAN
  camellia products list --search goreng`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts.RootOptions, cmd, func(f *OutputFormatter, s *session) error {
				return listProducts(opts, f, s)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Category, "category", "", "only this category (MAKANAN|MINUMAN|SNACK)")
	cmd.Flags().StringVar(&opts.Search, "search", "", "keyword to match in name or description")
	return cmd
}

func listProducts(opts *ProductOptions, f *OutputFormatter, s *session) error {
	products := s.store.Products()
	switch {
	case opts.Category != "" && opts.Search != "":
		return usageError("--category and --search cannot be combined")
	case opts.Category != "":
		c, err := model.ParseCategory(opts.Category)
		if err != nil {
			return usageError(err.Error())
		}
		products = s.store.ProductsByCategory(c)
	case opts.Search != "":
		products = s.store.SearchProducts(opts.Search)
	}

	if f.JSON() {
		return f.Success(newProductViews(products))
	}
	if len(products) == 0 {
		f.Textf("No products found.")
		return nil
	}
	for _, p := range products {
		f.Textf("%-6s %-22s %12s  stock %-4d %s", p.ID, p.Name, formatRupiah(p.Price), p.Stock, p.Category.Label())
	}
	return nil
}

func newProductsAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProductOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product to the catalog",
		Long: `Add a product to the catalog.

Example:
  camellia products add --id P009 --name "Teh Tarik" --price 9000 --stock 12 --category MINUMAN`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts.RootOptions, cmd, func(f *OutputFormatter, s *session) error {
				p, err := opts.product()
				if err != nil {
					return err
				}
				if err := s.store.AddProduct(p); err != nil {
					return err
				}
				if f.JSON() {
					return f.Success(newProductView(p))
				}
				f.Textf("✓ Added %s %s", p.ID, p.Name)
				return nil
			})
		},
	}

	addProductFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.ID, "id", "", "product id (required)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newProductsUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProductOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <product-id>",
		Short: "Change fields of an existing product",
		Long: `Change fields of an existing product. Only the flags given are applied.

Example:
  camellia products update P001 --price 16000 --stock 30`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts.RootOptions, cmd, func(f *OutputFormatter, s *session) error {
				return updateProduct(opts, cmd, args[0], f, s)
			})
		},
	}

	addProductFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.ID, "id", "", "new product id")
	return cmd
}

func updateProduct(opts *ProductOptions, cmd *cobra.Command, id string, f *OutputFormatter, s *session) error {
	current, ok := s.store.Product(id)
	if !ok {
		return notFoundError("product %s not found", id)
	}

	upd := *current
	changed := cmd.Flags().Changed
	if changed("id") {
		upd.ID = opts.ID
	}
	if changed("name") {
		upd.Name = opts.Name
	}
	if changed("description") {
		upd.Description = opts.Description
	}
	if changed("stock") {
		upd.Stock = opts.Stock
	}
	if changed("price") {
		price, err := model.ParsePrice(opts.Price)
		if err != nil {
			return usageError(err.Error())
		}
		upd.Price = price
	}
	if changed("category") {
		c, err := model.ParseCategory(opts.Category)
		if err != nil {
			return usageError(err.Error())
		}
		upd.Category = c
	}

	if err := s.store.UpdateProduct(id, upd); err != nil {
		return err
	}
	if f.JSON() {
		return f.Success(newProductView(current))
	}
	f.Textf("✓ Updated %s %s", current.ID, current.Name)
	return nil
}

func newProductsRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the catalog",
		Long:  "Remove a product from the catalog. Existing orders keep their item data.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(f *OutputFormatter, s *session) error {
				if err := s.store.RemoveProduct(args[0]); err != nil {
					return err
				}
				if f.JSON() {
					return f.Success(map[string]string{"removed": args[0]})
				}
				f.Textf("✓ Removed %s", args[0])
				return nil
			})
		},
	}
	return cmd
}

func addProductFlags(cmd *cobra.Command, opts *ProductOptions) {
	cmd.Flags().StringVar(&opts.Name, "name", "", "display name")
	cmd.Flags().StringVar(&opts.Price, "price", "", "unit price in rupiah")
	cmd.Flags().StringVar(&opts.Description, "description", "", "description")
	cmd.Flags().IntVar(&opts.Stock, "stock", 0, "units in stock")
	cmd.Flags().StringVar(&opts.Category, "category", "", "MAKANAN|MINUMAN|SNACK")
}

// product builds a Product from the add flags.
func (o *ProductOptions) product() (*model.Product, error) {
	price, err := model.ParsePrice(o.Price)
	if err != nil {
		return nil, usageError(err.Error())
	}
	c, err := model.ParseCategory(o.Category)
	if err != nil {
		return nil, usageError(err.Error())
	}
	return &model.Product{
		ID:          o.ID,
		Name:        o.Name,
		Price:       price,
		Description: o.Description,
		Stock:       o.Stock,
		Category:    c,
	}, nil
}
