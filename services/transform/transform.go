package transform

import (
	"fmt"
	"math"
	"time"

	"retailops-dashboard/pkg/errutil"
)

// Func rewrites a table in place and returns it. The date stamped into the
// output comes from the caller's clock.
type Func func(t *Table, now time.Time) *Table

// registry maps a task type to its transform and the output sheet name.
var registry = map[string]struct {
	fn    Func
	sheet string
}{
	"retailer_data":    {RetailerData, "Processed Data"},
	"inventory_update": {InventoryUpdate, "Inventory Update"},
	"sales_report":     {SalesReport, "Sales Report"},
	"price_analysis":   {PriceAnalysis, "Price Analysis"},
	"customer_data":    {CustomerData, "Customer Data"},
	"financial_report": {FinancialReport, "Financial Report"},
}

// Apply runs the transform registered for taskType and returns the table
// with the sheet name the output workbook should use.
func Apply(taskType string, t *Table, now time.Time) (*Table, string, error) {
	entry, ok := registry[taskType]
	if !ok {
		return nil, "", errutil.ValidationFailed("Unknown task type", "taskType")
	}
	return entry.fn(t, now), entry.sheet, nil
}

// Known reports whether taskType names a registered transform.
func Known(taskType string) bool {
	_, ok := registry[taskType]
	return ok
}

func dateStamp(now time.Time) string {
	return now.UTC().Format("2006-01-02")
}

func RetailerData(t *Table, now time.Time) *Table {
	t.addHeaders("Processed_Date", "Row_ID", "Status")
	for i, row := range t.Rows {
		row["Processed_Date"] = dateStamp(now)
		row["Row_ID"] = i + 1
		row["Status"] = "Processed"
	}
	return t
}

func InventoryUpdate(t *Table, now time.Time) *Table {
	t.addHeaders("Updated_Date", "Low_Stock_Alert", "Reorder_Level")
	for _, row := range t.Rows {
		qty := num(row, "Quantity")
		row["Updated_Date"] = dateStamp(now)
		row["Low_Stock_Alert"] = yesNo(qty < 10)
		row["Reorder_Level"] = math.Max(0, qty-5)
	}
	return t
}

func SalesReport(t *Table, now time.Time) *Table {
	t.addHeaders("Report_Date", "Above_Average", "Total_Sales", "Average_Sale", "Total_Records")

	var total float64
	for _, row := range t.Rows {
		total += num(row, "Amount")
	}
	var avg float64
	if len(t.Rows) > 0 {
		avg = total / float64(len(t.Rows))
	}

	count := len(t.Rows)
	for _, row := range t.Rows {
		row["Report_Date"] = dateStamp(now)
		row["Above_Average"] = yesNo(num(row, "Amount") > avg)
	}
	t.Rows = append(t.Rows, map[string]any{
		"Report_Date":   dateStamp(now),
		"Total_Sales":   total,
		"Average_Sale":  avg,
		"Total_Records": count,
	})
	return t
}

func PriceAnalysis(t *Table, now time.Time) *Table {
	t.addHeaders("Analysis_Date", "Price_Change", "Price_Category")
	for _, row := range t.Rows {
		newPrice := num(row, "New_Price")
		oldPrice := num(row, "Old_Price")

		row["Analysis_Date"] = dateStamp(now)
		if newPrice != 0 && oldPrice != 0 {
			row["Price_Change"] = fmt.Sprintf("%.2f%%", (newPrice-oldPrice)/oldPrice*100)
		} else {
			row["Price_Change"] = "N/A"
		}
		switch {
		case newPrice > 100:
			row["Price_Category"] = "Premium"
		case newPrice > 50:
			row["Price_Category"] = "Mid"
		default:
			row["Price_Category"] = "Budget"
		}
	}
	return t
}

func CustomerData(t *Table, now time.Time) *Table {
	t.addHeaders("Processed_Date", "Customer_Segment", "Last_Contact")
	for _, row := range t.Rows {
		purchases := num(row, "Total_Purchases")

		row["Processed_Date"] = dateStamp(now)
		switch {
		case purchases > 1000:
			row["Customer_Segment"] = "VIP"
		case purchases > 500:
			row["Customer_Segment"] = "Premium"
		default:
			row["Customer_Segment"] = "Standard"
		}
		row["Last_Contact"] = dateStamp(now)
	}
	return t
}

func FinancialReport(t *Table, now time.Time) *Table {
	t.addHeaders("Report_Date", "Net_Profit", "Profit_Margin")
	for _, row := range t.Rows {
		revenue := num(row, "Revenue")
		expenses := num(row, "Expenses")

		row["Report_Date"] = dateStamp(now)
		row["Net_Profit"] = revenue - expenses
		if revenue != 0 {
			row["Profit_Margin"] = fmt.Sprintf("%.2f%%", (revenue-expenses)/revenue*100)
		} else {
			row["Profit_Margin"] = "N/A"
		}
	}
	return t
}
