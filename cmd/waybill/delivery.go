// Delivery commands: list, get, add, status, delete, count, plus the
// order-created hook used by host-side automation.
package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/waybill/internal/service"
	"github.com/mesh-intelligence/waybill/internal/webhook"
	"github.com/mesh-intelligence/waybill/pkg/types"
)

var deliveryCmd = &cobra.Command{
	Use:   "delivery",
	Short: "Manage delivery records",
}

var (
	listStatus   string
	listProvider string
	listFrom     string
	listTo       string
	listOrderBy  string
	listOrder    string
	listLimit    int
	listOffset   int

	addOrderID  int64
	addTracking string
	addProvider string
	addStatus   string

	countStatus string
)

func init() {
	deliveryListCmd.Flags().StringVar(&listStatus, "status", "", "filter by status")
	deliveryListCmd.Flags().StringVar(&listProvider, "provider", "", "filter by shipping provider")
	deliveryListCmd.Flags().StringVar(&listFrom, "from", "", "creation date lower bound (YYYY-MM-DD, inclusive)")
	deliveryListCmd.Flags().StringVar(&listTo, "to", "", "creation date upper bound (YYYY-MM-DD, inclusive)")
	deliveryListCmd.Flags().StringVar(&listOrderBy, "order-by", "id", "sort column (id, created_at, updated_at, status)")
	deliveryListCmd.Flags().StringVar(&listOrder, "order", "DESC", "sort direction (ASC or DESC)")
	deliveryListCmd.Flags().IntVar(&listLimit, "limit", 0, "maximum number of results (capped at 100)")
	deliveryListCmd.Flags().IntVar(&listOffset, "offset", 0, "number of results to skip")

	deliveryAddCmd.Flags().Int64Var(&addOrderID, "order-id", 0, "order the delivery belongs to")
	deliveryAddCmd.Flags().StringVar(&addTracking, "tracking", "", "tracking number (generated when omitted)")
	deliveryAddCmd.Flags().StringVar(&addProvider, "provider", "", "shipping provider")
	deliveryAddCmd.Flags().StringVar(&addStatus, "status", "", "initial status (default pending)")

	deliveryCountCmd.Flags().StringVar(&countStatus, "status", "", "count only this status")

	deliveryCmd.AddCommand(deliveryListCmd)
	deliveryCmd.AddCommand(deliveryGetCmd)
	deliveryCmd.AddCommand(deliveryAddCmd)
	deliveryCmd.AddCommand(deliveryStatusCmd)
	deliveryCmd.AddCommand(deliveryDeleteCmd)
	deliveryCmd.AddCommand(deliveryCountCmd)
}

var deliveryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List deliveries",
	Long: `List fetches the page of deliveries matching the filters.

Example:
  waybill delivery list
  waybill delivery list --status pending --provider balto
  waybill delivery list --from 2026-01-01 --order-by created_at --order ASC`,
	RunE: runDeliveryList,
}

func runDeliveryList(cmd *cobra.Command, args []string) error {
	repo, err := backend.Deliveries()
	if err != nil {
		return err
	}

	filter := types.DeliveryFilter{
		Status:           listStatus,
		ShippingProvider: listProvider,
		OrderBy:          listOrderBy,
		Order:            listOrder,
		Limit:            listLimit,
		Offset:           listOffset,
	}
	if listFrom != "" {
		from, err := time.Parse("2006-01-02", listFrom)
		if err != nil {
			return fmt.Errorf("invalid --from date: %w", err)
		}
		filter.From = from
	}
	if listTo != "" {
		to, err := time.Parse("2006-01-02", listTo)
		if err != nil {
			return fmt.Errorf("invalid --to date: %w", err)
		}
		// Make the upper bound inclusive for whole-day filters.
		filter.To = to.Add(24*time.Hour - time.Second)
	}

	deliveries, err := repo.List(cliActor, filter)
	if err != nil {
		return err
	}

	if jsonOutput {
		return emitJSON(deliveries)
	}
	printDeliveryTable(deliveries)
	return nil
}

var deliveryGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one delivery",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		repo, err := backend.Deliveries()
		if err != nil {
			return err
		}
		d, err := repo.Get(cliActor, id)
		if err != nil {
			return err
		}
		return emitJSON(d)
	},
}

var deliveryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Insert a delivery record",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := backend.Deliveries()
		if err != nil {
			return err
		}
		tracking := addTracking
		if tracking == "" {
			tracking = service.NewTrackingNumber()
		}
		d := &types.Delivery{
			OrderID:          addOrderID,
			TrackingNumber:   tracking,
			Status:           addStatus,
			ShippingProvider: addProvider,
		}
		id, err := repo.Insert(cliActor, d)
		if err != nil {
			return err
		}
		emitSuccess(fmt.Sprintf("Delivery %d created (tracking %s)", id, d.TrackingNumber))
		return nil
	},
}

var deliveryStatusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Update a delivery's status and notify the webhook endpoint",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		repo, err := backend.Deliveries()
		if err != nil {
			return err
		}
		svc := service.NewDeliveries(repo, webhook.NewSender(store, logger), logger)
		if err := svc.UpdateStatus(cliActor, id, args[1]); err != nil {
			return err
		}
		emitSuccess(fmt.Sprintf("Delivery %d moved to %s", id, args[1]))
		return nil
	},
}

var deliveryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a delivery record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		repo, err := backend.Deliveries()
		if err != nil {
			return err
		}
		removed, err := repo.Delete(cliActor, id)
		if err != nil {
			return err
		}
		if !removed {
			emitSuccess(fmt.Sprintf("Delivery %d not found, nothing deleted", id))
			return nil
		}
		emitSuccess(fmt.Sprintf("Delivery %d deleted", id))
		return nil
	},
}

var deliveryCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count delivery records",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := backend.Deliveries()
		if err != nil {
			return err
		}
		n, err := repo.Count(cliActor, countStatus)
		if err != nil {
			return err
		}
		if jsonOutput {
			return emitJSON(map[string]int64{"count": n})
		}
		fmt.Println(n)
		return nil
	},
}

var orderCreatedCmd = &cobra.Command{
	Use:   "order-created <order-id>",
	Short: "Run the order-creation hook for an order",
	Long: `Order-created inserts the pending delivery record for a newly placed
order, with a generated tracking token and the configured default
shipping provider. Host-side automation calls this on order creation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orderID, err := parseID(args[0])
		if err != nil {
			return err
		}
		repo, err := backend.Deliveries()
		if err != nil {
			return err
		}
		svc := service.NewOrders(repo, store, logger)
		d, err := svc.OrderCreated(cliActor, orderID)
		if err != nil {
			return err
		}
		emitSuccess(fmt.Sprintf("Delivery %d created for order %d (tracking %s)",
			d.ID, orderID, d.TrackingNumber))
		return nil
	},
}

// printDeliveryTable prints deliveries in a human-readable table.
func printDeliveryTable(deliveries []*types.Delivery) {
	if len(deliveries) == 0 {
		fmt.Println("No deliveries found.")
		return
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "ID\tORDER\tTRACKING\tSTATUS\tPROVIDER\tCREATED")
	fmt.Fprintln(w, "--\t-----\t--------\t------\t--------\t-------")
	for _, d := range deliveries {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\n",
			d.ID,
			d.OrderID,
			d.TrackingNumber,
			d.Status,
			d.ShippingProvider,
			d.CreatedAt.Format("2006-01-02"),
		)
	}
	w.Flush()
	fmt.Print(sb.String())
	fmt.Printf("Total: %d delivery record(s)\n", len(deliveries))
}
