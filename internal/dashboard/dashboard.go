// Package dashboard derives the landing-page numbers from the record store.
// Everything here is a pure fold over store snapshots; nothing is cached and
// nothing talks to the network.
package dashboard

import (
	"time"

	"github.com/kresfloral/kres-console/internal/records"
	"github.com/kresfloral/kres-console/pkg/enums"
	"github.com/shopspring/decimal"
)

// Summary is the headline card row of the dashboard.
type Summary struct {
	TotalProducts      int
	TotalOrders        int
	PendingOrders      int
	CompletedOrders    int
	LowStockCount      int
	CriticalStockCount int
	RevenueAllTime     decimal.Decimal
	RevenueThisMonth   decimal.Decimal
	RevenueThisWeek    decimal.Decimal
	NewCustomersToday  int
	PendingPayments    int
}

// Summarize folds the store into the dashboard headline numbers. Revenue
// counts fully paid orders only; pending and partial settlements show up in
// PendingPayments instead.
func Summarize(store *records.Store, now time.Time) Summary {
	s := Summary{
		RevenueAllTime:   decimal.Zero,
		RevenueThisMonth: decimal.Zero,
		RevenueThisWeek:  decimal.Zero,
	}

	for _, product := range store.Products.All() {
		s.TotalProducts++
		switch product.Status() {
		case enums.StockStatusLowStock:
			s.LowStockCount++
		case enums.StockStatusCritical:
			s.CriticalStockCount++
		}
	}

	weekStart := now.AddDate(0, 0, -7)
	for _, order := range store.Orders.All() {
		s.TotalOrders++
		switch order.Status {
		case enums.OrderStatusPending, enums.OrderStatusProcessing:
			s.PendingOrders++
		case enums.OrderStatusCompleted:
			s.CompletedOrders++
		}

		switch order.PaymentStatus {
		case enums.PaymentStatusPaid:
			s.RevenueAllTime = s.RevenueAllTime.Add(order.Total)
			if sameMonth(order.CreatedAt, now) {
				s.RevenueThisMonth = s.RevenueThisMonth.Add(order.Total)
			}
			if order.CreatedAt.After(weekStart) && !order.CreatedAt.After(now) {
				s.RevenueThisWeek = s.RevenueThisWeek.Add(order.Total)
			}
		case enums.PaymentStatusPending, enums.PaymentStatusPartial:
			s.PendingPayments++
		}
	}

	for _, customer := range store.Customers.All() {
		if sameDay(customer.CreatedAt, now) {
			s.NewCustomersToday++
		}
	}
	return s
}

// MonthlyRevenue is one bar of the revenue chart.
type MonthlyRevenue struct {
	Month   time.Time
	Revenue decimal.Decimal
	Orders  int
}

// RevenueByMonth returns one row per calendar month for the trailing window,
// oldest first, with empty months zero-filled so the chart axis stays stable.
func RevenueByMonth(store *records.Store, months int, now time.Time) []MonthlyRevenue {
	if months <= 0 {
		return nil
	}

	rows := make([]MonthlyRevenue, months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		month := monthStart(now).AddDate(0, i-months+1, 0)
		rows[i] = MonthlyRevenue{Month: month, Revenue: decimal.Zero}
		index[month.Format("2006-01")] = i
	}

	for _, order := range store.Orders.All() {
		if order.PaymentStatus != enums.PaymentStatusPaid {
			continue
		}
		i, ok := index[order.CreatedAt.Format("2006-01")]
		if !ok {
			continue
		}
		rows[i].Revenue = rows[i].Revenue.Add(order.Total)
		rows[i].Orders++
	}
	return rows
}

// LowStockAlerts lists the products needing a reorder, worst first. Within
// each severity the store order is preserved.
func LowStockAlerts(store *records.Store) []records.Product {
	var critical, low []records.Product
	for _, product := range store.Products.All() {
		switch product.Status() {
		case enums.StockStatusCritical:
			critical = append(critical, product)
		case enums.StockStatusLowStock:
			low = append(low, product)
		}
	}
	return append(critical, low...)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
