package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/camellia/internal/model"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show sales totals and order counts",
		Long: `Show the admin dashboard figures: revenue from delivered orders, order
counts per status, and catalog and account sizes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(f *OutputFormatter, s *session) error {
				v := statsView{
					TotalSales: s.store.TotalSales(),
					Delivered:  s.store.DeliveredCount(),
					Pending:    s.store.PendingCount(),
					Products:   len(s.store.Products()),
					Users:      len(s.store.Users()),
					ByStatus:   s.store.StatusCounts(),
				}
				if f.JSON() {
					return f.Success(v)
				}

				f.Textf("Total sales:  %s", formatRupiah(v.TotalSales))
				f.Textf("Delivered:    %d", v.Delivered)
				f.Textf("Pending:      %d", v.Pending)
				f.Textf("Products:     %d", v.Products)
				f.Textf("Users:        %d", v.Users)
				f.Textf("")
				for _, st := range model.Statuses {
					f.Textf("  %s %-10s %d", st.Icon(), st.Label(), v.ByStatus[st])
				}
				return nil
			})
		},
	}
}
