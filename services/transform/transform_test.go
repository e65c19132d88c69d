package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 3, 14, 30, 0, 0, time.UTC)

func TestApplyUnknownTaskType(t *testing.T) {
	_, _, err := Apply("mystery", &Table{}, testNow)
	require.Error(t, err)
}

func TestKnown(t *testing.T) {
	require.True(t, Known("sales_report"))
	require.False(t, Known("sales"))
}

func TestRetailerData(t *testing.T) {
	table := &Table{
		Headers: []string{"Retailer"},
		Rows: []map[string]any{
			{"Retailer": "Acme"},
			{"Retailer": "Bulk Barn"},
		},
	}

	out, sheet, err := Apply("retailer_data", table, testNow)
	require.NoError(t, err)
	require.Equal(t, "Processed Data", sheet)
	require.Equal(t, []string{"Retailer", "Processed_Date", "Row_ID", "Status"}, out.Headers)
	require.Equal(t, "2025-06-03", out.Rows[0]["Processed_Date"])
	require.Equal(t, 1, out.Rows[0]["Row_ID"])
	require.Equal(t, 2, out.Rows[1]["Row_ID"])
	require.Equal(t, "Processed", out.Rows[0]["Status"])
}

func TestInventoryUpdate(t *testing.T) {
	table := &Table{
		Headers: []string{"Item", "Quantity"},
		Rows: []map[string]any{
			{"Item": "widget", "Quantity": "3"},
			{"Item": "gadget", "Quantity": "25"},
			{"Item": "mystery"},
		},
	}

	out, _, err := Apply("inventory_update", table, testNow)
	require.NoError(t, err)
	require.Equal(t, "YES", out.Rows[0]["Low_Stock_Alert"])
	require.Equal(t, float64(0), out.Rows[0]["Reorder_Level"])
	require.Equal(t, "NO", out.Rows[1]["Low_Stock_Alert"])
	require.Equal(t, float64(20), out.Rows[1]["Reorder_Level"])
	require.Equal(t, "YES", out.Rows[2]["Low_Stock_Alert"], "missing quantity counts as zero")
}

func TestSalesReportSummaryRow(t *testing.T) {
	table := &Table{
		Headers: []string{"Order", "Amount"},
		Rows: []map[string]any{
			{"Order": "1", "Amount": "100"},
			{"Order": "2", "Amount": "300"},
		},
	}

	out, _, err := Apply("sales_report", table, testNow)
	require.NoError(t, err)
	require.Len(t, out.Rows, 3)

	require.Equal(t, "NO", out.Rows[0]["Above_Average"])
	require.Equal(t, "YES", out.Rows[1]["Above_Average"])

	summary := out.Rows[2]
	require.Equal(t, float64(400), summary["Total_Sales"])
	require.Equal(t, float64(200), summary["Average_Sale"])
	require.Equal(t, 2, summary["Total_Records"])
}

func TestPriceAnalysis(t *testing.T) {
	table := &Table{
		Headers: []string{"SKU", "Old_Price", "New_Price"},
		Rows: []map[string]any{
			{"SKU": "a", "Old_Price": "100", "New_Price": "150"},
			{"SKU": "b", "Old_Price": "40", "New_Price": "60"},
			{"SKU": "c", "New_Price": "20"},
		},
	}

	out, _, err := Apply("price_analysis", table, testNow)
	require.NoError(t, err)
	require.Equal(t, "50.00%", out.Rows[0]["Price_Change"])
	require.Equal(t, "Premium", out.Rows[0]["Price_Category"])
	require.Equal(t, "Mid", out.Rows[1]["Price_Category"])
	require.Equal(t, "N/A", out.Rows[2]["Price_Change"], "missing old price")
	require.Equal(t, "Budget", out.Rows[2]["Price_Category"])
}

func TestCustomerSegmentation(t *testing.T) {
	table := &Table{
		Headers: []string{"Customer", "Total_Purchases"},
		Rows: []map[string]any{
			{"Customer": "a", "Total_Purchases": "1500"},
			{"Customer": "b", "Total_Purchases": "700"},
			{"Customer": "c", "Total_Purchases": "200"},
		},
	}

	out, _, err := Apply("customer_data", table, testNow)
	require.NoError(t, err)
	require.Equal(t, "VIP", out.Rows[0]["Customer_Segment"])
	require.Equal(t, "Premium", out.Rows[1]["Customer_Segment"])
	require.Equal(t, "Standard", out.Rows[2]["Customer_Segment"])
	require.Equal(t, "2025-06-03", out.Rows[0]["Last_Contact"])
}

func TestFinancialReport(t *testing.T) {
	table := &Table{
		Headers: []string{"Month", "Revenue", "Expenses"},
		Rows: []map[string]any{
			{"Month": "Jan", "Revenue": "1000", "Expenses": "600"},
			{"Month": "Feb", "Expenses": "50"},
		},
	}

	out, _, err := Apply("financial_report", table, testNow)
	require.NoError(t, err)
	require.Equal(t, float64(400), out.Rows[0]["Net_Profit"])
	require.Equal(t, "40.00%", out.Rows[0]["Profit_Margin"])
	require.Equal(t, float64(-50), out.Rows[1]["Net_Profit"])
	require.Equal(t, "N/A", out.Rows[1]["Profit_Margin"], "zero revenue")
}

func TestWorkbookRoundTrip(t *testing.T) {
	table := &Table{
		Headers: []string{"Retailer", "Quantity"},
		Rows: []map[string]any{
			{"Retailer": "Acme", "Quantity": "12"},
			{"Retailer": "Bulk Barn", "Quantity": "3"},
		},
	}

	data, err := WriteWorkbook(table, "Inventory")
	require.NoError(t, err)

	parsed, err := ReadWorkbook(data)
	require.NoError(t, err)
	require.Equal(t, table.Headers, parsed.Headers)
	require.Len(t, parsed.Rows, 2)
	require.Equal(t, "Acme", parsed.Rows[0]["Retailer"])
	require.Equal(t, "3", parsed.Rows[1]["Quantity"])
}
