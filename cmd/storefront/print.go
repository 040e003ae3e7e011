package main

import (
	"fmt"
	"time"

	"suju/storefront/internal/models"
)

func parseStatus(s string) models.OrderStatus {
	switch models.OrderStatus(s) {
	case models.OrderStatusPending, models.OrderStatusPaid, models.OrderStatusShipped,
		models.OrderStatusCompleted, models.OrderStatusCancelled, models.OrderStatusRefunded:
		return models.OrderStatus(s)
	}
	return ""
}

func printOrder(detail models.OrderDetail) {
	fmt.Printf("order %s — %s (%s)\n", detail.OrderNumber, detail.Status, detail.StatusText)
	for _, item := range detail.Items {
		fmt.Printf("  %-30s x%-3d ¥%.2f\n", item.ProductName, item.Quantity, item.Subtotal)
	}
	fmt.Printf("  total ¥%.2f", detail.TotalAmount)
	if detail.PaymentMethod != "" {
		fmt.Printf(" via %s", detail.PaymentMethod)
	}
	fmt.Println()
	if addr := detail.ShippingAddress; addr != nil {
		fmt.Printf("  ship to %s, %s %s %s %s\n",
			addr.RecipientName, addr.Province, addr.City, addr.District, addr.DetailAddress)
	}
	fmt.Println("  timeline:")
	for _, t := range detail.Timelines {
		fmt.Printf("    %s  %-10s %s", t.Time.Format(time.DateTime), t.Status, t.StatusText)
		if t.Description != "" {
			fmt.Printf(" (%s)", t.Description)
		}
		fmt.Println()
	}
}
