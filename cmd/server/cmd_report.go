package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/ecomlab/sale-recorder/internal/config"
	"github.com/ecomlab/sale-recorder/internal/reporting"
)

var reportLimit int

var reportCmd = &cobra.Command{
	Use:   "report <name>",
	Short: "Run a reporting query and print the result",
	Long: `Available reports:
  top-products             products ranked by revenue
  revenue-by-category      revenue, COGS and margin per category
  customer-lifetime-value  customers ranked by cumulative spend
  seller-performance       per-seller volume and delivery success rate
  shipping-delays          late delivery summary
  monthly-revenue          revenue per calendar month`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(args[0])
	},
}

func init() {
	reportCmd.Flags().IntVar(&reportLimit, "limit", 10, "row limit for ranked reports")
}

func runReport(name string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	reports := reporting.New(sqlx.NewDb(db, cfg.DB.Driver))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	defer w.Flush()

	switch name {
	case "top-products":
		rows, err := reports.TopProducts(ctx, reportLimit)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "PRODUCT\tUNITS\tREVENUE")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%d\t%s\n", r.Name, r.UnitsSold, r.Revenue)
		}
	case "revenue-by-category":
		rows, err := reports.RevenueByCategory(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "CATEGORY\tREVENUE\tCOGS\tMARGIN")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Category, r.Revenue, r.COGS, r.Margin)
		}
	case "customer-lifetime-value":
		rows, err := reports.CustomerLifetimeValue(ctx, reportLimit)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "CUSTOMER\tORDERS\tTOTAL SPENT")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%d\t%s\n", r.Name, r.OrderCount, r.TotalSpent)
		}
	case "seller-performance":
		rows, err := reports.SellerPerformanceReport(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "SELLER\tORDERS\tREVENUE\tON TIME\tSUCCESS")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%.0f%%\n", r.Name, r.OrderCount, r.Revenue, r.OnTime, r.SuccessRate*100)
		}
	case "shipping-delays":
		sum, err := reports.ShippingDelays(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "DELIVERED\tLATE\tAVG DELAY (DAYS)")
		fmt.Fprintf(w, "%d\t%d\t%.1f\n", sum.Delivered, sum.Late, sum.AvgDelayDays)
	case "monthly-revenue":
		rows, err := reports.MonthlyRevenueReport(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "MONTH\tORDERS\tREVENUE")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%d\t%s\n", r.Month, r.Orders, r.Revenue)
		}
	default:
		return fmt.Errorf("unknown report %q", name)
	}
	return nil
}
