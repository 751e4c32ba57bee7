package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/camellia/internal/model"
)

// OrderOptions holds flags shared by the order subcommands.
type OrderOptions struct {
	*RootOptions
	Buyer    string
	Status   string
	User     string
	Password string
	Room     string
	Items    []string
}

// NewOrdersCommand creates the orders command group.
func NewOrdersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Place orders and follow them through the kitchen",
	}

	cmd.AddCommand(newOrdersListCommand(rootOpts))
	cmd.AddCommand(newOrdersPlaceCommand(rootOpts))
	cmd.AddCommand(newOrdersAdvanceCommand(rootOpts))
	cmd.AddCommand(newOrdersHistoryCommand(rootOpts))
	return cmd
}

func newOrdersListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OrderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List orders, optionally for one buyer or status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts.RootOptions, cmd, func(f *OutputFormatter, s *session) error {
				return listOrders(opts, f, s)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Buyer, "buyer", "", "only orders placed by this username")
	cmd.Flags().StringVar(&opts.Status, "status", "", "only orders in this status")
	return cmd
}

func listOrders(opts *OrderOptions, f *OutputFormatter, s *session) error {
	orders := s.store.Orders()
	if opts.Buyer != "" {
		orders = s.store.OrdersByBuyer(opts.Buyer)
	}
	if opts.Status != "" {
		st, err := parseStatusFlag(opts.Status)
		if err != nil {
			return err
		}
		filtered := orders[:0:0]
		for _, o := range orders {
			if o.Status == st {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}

	if f.JSON() {
		views := make([]orderView, 0, len(orders))
		for _, o := range orders {
			views = append(views, newOrderView(o))
		}
		return f.Success(views)
	}
	if len(orders) == 0 {
		f.Textf("No orders found.")
		return nil
	}
	for _, o := range orders {
		f.Textf("%s %s  %-10s %-14s %12s  %-9s %s",
			o.Status.Icon(), o.ID, o.BuyerUsername, o.RoomName,
			formatRupiah(o.TotalAmount), o.Status.Label(),
			o.Created().Format("2006-01-02 15:04"))
		if f.Verbose {
			for _, it := range o.Items {
				f.Textf("    %s  %s", it, formatRupiah(it.Total()))
			}
		}
	}
	return nil
}

func newOrdersPlaceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OrderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "place",
		Short: "Check out a cart as a buyer",
		Long: `Check out a cart as a buyer. Each --item is PRODUCT_ID=QUANTITY; the
same product may appear more than once. Stock is checked and decremented
for the whole cart at once.

Example:
  camellia orders place --user buyer --password buyer --room 101 --item P001=2 --item P004=1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts.RootOptions, cmd, func(f *OutputFormatter, s *session) error {
				return placeOrder(opts, f, s)
			})
		},
	}

	cmd.Flags().StringVar(&opts.User, "user", "", "buyer username (required)")
	cmd.Flags().StringVar(&opts.Password, "password", "", "buyer password")
	cmd.Flags().StringVar(&opts.Room, "room", "", "room the order is delivered to (required)")
	cmd.Flags().StringArrayVar(&opts.Items, "item", nil, "PRODUCT_ID=QUANTITY (repeatable)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("room")
	return cmd
}

func placeOrder(opts *OrderOptions, f *OutputFormatter, s *session) error {
	u, err := authenticate(s, opts.User, opts.Password)
	if err != nil {
		return err
	}
	if u.Role != model.RoleBuyer {
		return &ExitError{Code: ExitFailure, ErrCode: ErrCodeForbidden,
			Message: fmt.Sprintf("%s is a %s account; only buyers can place orders", u.Username, u.Role)}
	}

	cart := make([]model.CartItem, 0, len(opts.Items))
	for _, raw := range opts.Items {
		id, qty, err := parseItem(raw)
		if err != nil {
			return err
		}
		p, ok := s.store.Product(id)
		if !ok {
			return notFoundError("product %s not found", id)
		}
		cart = append(cart, model.CartItem{Product: p, Quantity: qty})
	}

	o, err := s.store.PlaceOrder(u.Username, opts.Room, cart)
	if err != nil {
		return err
	}

	if f.JSON() {
		return f.Success(newOrderView(o))
	}
	f.Textf("✓ Order %s placed for room %s", o.ID, o.RoomName)
	for _, it := range o.Items {
		f.Textf("    %s  %s", it, formatRupiah(it.Total()))
	}
	f.Textf("  Total %s", formatRupiah(o.TotalAmount))
	return nil
}

// parseItem splits "P001=2" into a product id and a quantity.
func parseItem(raw string) (string, int, error) {
	id, qtyText, ok := strings.Cut(raw, "=")
	id = strings.TrimSpace(id)
	if !ok || id == "" {
		return "", 0, usageError(fmt.Sprintf("invalid --item %q: want PRODUCT_ID=QUANTITY", raw))
	}
	qty, err := strconv.Atoi(strings.TrimSpace(qtyText))
	if err != nil {
		return "", 0, usageError(fmt.Sprintf("invalid --item %q: quantity must be a whole number", raw))
	}
	return id, qty, nil
}

func newOrdersAdvanceCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "advance <order-id> <status>",
		Short: "Move an order to its next status",
		Long: `Move an order to another status. Allowed changes:

  PENDING   -> PREPARING | CANCELLED
  PREPARING -> DELIVERED

DELIVERED and CANCELLED are final.

Example:
  camellia orders advance 3F2A9C1D PREPARING`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(f *OutputFormatter, s *session) error {
				next, err := parseStatusFlag(args[1])
				if err != nil {
					return err
				}
				o, ok := s.store.Order(args[0])
				if !ok {
					return notFoundError("order %s not found", args[0])
				}
				from := o.Status
				if err := s.store.TransitionOrder(o, next); err != nil {
					return err
				}
				if f.JSON() {
					return f.Success(newOrderView(o))
				}
				f.Textf("✓ Order %s: %s -> %s", o.ID, from.Label(), o.Status.Label())
				return nil
			})
		},
	}
}

func newOrdersHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history <order-id>",
		Short: "Show the journal entries recorded for an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(f *OutputFormatter, s *session) error {
				return orderHistory(cmd.Context(), args[0], f, s)
			})
		},
	}
}

func orderHistory(ctx context.Context, orderID string, f *OutputFormatter, s *session) error {
	if s.journal == nil {
		return &ExitError{Code: ExitCommandError, ErrCode: ErrCodeJournal, Message: "order journal is disabled"}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	events, err := s.journal.History(ctx, orderID)
	if err != nil {
		return &ExitError{Code: ExitCommandError, ErrCode: ErrCodeJournal, Message: "failed to read journal", Err: err}
	}
	if _, ok := s.store.Order(orderID); !ok && len(events) == 0 {
		return notFoundError("order %s not found", orderID)
	}

	if f.JSON() {
		views := make([]eventView, 0, len(events))
		for _, ev := range events {
			views = append(views, eventView{
				Seq: ev.Seq, Kind: ev.Kind, From: ev.From, To: ev.To,
				Actor: ev.Actor, Amount: ev.Amount, At: ev.At,
			})
		}
		return f.Success(views)
	}
	if len(events) == 0 {
		f.Textf("No journal entries for %s.", orderID)
		return nil
	}
	for _, ev := range events {
		at := ev.At.Format(time.DateTime)
		if ev.From == "" {
			f.Textf("%4d  %s  %-14s %s  %s", ev.Seq, at, ev.Kind, ev.To.Label(), formatRupiah(ev.Amount))
			continue
		}
		f.Textf("%4d  %s  %-14s %s -> %s", ev.Seq, at, ev.Kind, ev.From.Label(), ev.To.Label())
	}
	return nil
}

func parseStatusFlag(s string) (model.OrderStatus, error) {
	st, err := model.ParseStatus(strings.ToUpper(strings.TrimSpace(s)))
	if err != nil {
		return "", usageError(err.Error())
	}
	return st, nil
}
