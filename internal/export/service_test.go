package export

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playtimeuy/payments/internal/sale"
	"github.com/playtimeuy/payments/internal/sale/store"
)

func seed(t *testing.T, repo *store.Memory, promoter string, price int64, paid bool) *sale.Sale {
	t.Helper()

	ctx := context.Background()
	finalPrice := decimal.NewFromInt(price)
	split, err := sale.FlatPolicy{Base: decimal.NewFromInt(750)}.Split(finalPrice)
	require.NoError(t, err)

	sl := &sale.Sale{
		PromoterID: promoter,
		FinalPrice: finalPrice,
		BasePrice:  decimal.NewFromInt(750),
		Commission: split.Commission,
		Net:        split.Net,
		Policy:     sale.PolicyFlat,
		Status:     sale.StatusPending,
	}
	require.NoError(t, repo.CreateSale(ctx, sl))

	if paid {
		now := time.Now().UTC()
		require.NoError(t, repo.MergePayment(ctx, sl.ID, sale.PaymentUpdate{
			PaymentID:     "PAY-" + sl.ID.String()[:8],
			GatewayStatus: sale.GatewayApproved,
			Status:        new(sale.StatusPaid),
			PaidAt:        &now,
			UpdatedAt:     now,
		}))
	}

	return sl
}

func TestService_Export(t *testing.T) {
	repo := store.NewMemory()
	svc := NewService(sale.NewService(repo, sale.Options{}))

	seed(t, repo, "p1", 1000, true)
	seed(t, repo, "p1", 900, true)
	seed(t, repo, "p2", 1750, true)
	seed(t, repo, "p3", 5000, false)

	dir := filepath.Join(t.TempDir(), "out")

	report, err := svc.Export(context.Background(), sale.ListFilter{}, dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "commissions_all.csv"), report.Path)
	assert.Len(t, report.Sales, 3)

	require.Len(t, report.Totals, 2)
	assert.Equal(t, PayeePromoter, report.Totals[0].Kind)
	assert.Equal(t, "p2", report.Totals[0].PayeeID)
	assert.Equal(t, "1000", report.Totals[0].Commission.String())
	assert.Equal(t, "p1", report.Totals[1].PayeeID)
	assert.Equal(t, 2, report.Totals[1].Sales)
	assert.Equal(t, "1900", report.Totals[1].Gross.String())
	assert.Equal(t, "400", report.Totals[1].Commission.String())

	f, err := os.Open(report.Path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, csvHeader, records[0])

	for _, rec := range records[1:] {
		assert.NotEmpty(t, rec[2], "paid_at")
		assert.NotEqual(t, "p3", rec[3])
	}

	summary := svc.GenerateSummary(report, "UYU")
	assert.Contains(t, summary, "* promoter p2 | 1 sales | gross UYU 1750.00 | commission UYU 1000.00")
	assert.Contains(t, summary, "* promoter p1 | 2 sales | gross UYU 1900.00 | commission UYU 400.00")
}

func TestService_Export_Empty(t *testing.T) {
	repo := store.NewMemory()
	svc := NewService(sale.NewService(repo, sale.Options{}))

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)

	report, err := svc.Export(context.Background(), sale.ListFilter{CreatedFrom: &from, CreatedTo: &to}, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "commissions_20260301-20260331.csv", filepath.Base(report.Path))
	assert.Empty(t, report.Totals)
	assert.Equal(t, "No paid sales in this period.\n", svc.GenerateSummary(report, "UYU"))
}

func TestTotals_Payees(t *testing.T) {
	totals := Totals([]*sale.Sale{
		{FinalPrice: decimal.NewFromInt(750), Commission: decimal.Zero},
		{PromoterID: "p1", FinalPrice: decimal.NewFromInt(800), Commission: decimal.NewFromInt(50)},
		{CreatorID: "ana", FinalPrice: decimal.NewFromInt(1000), Commission: decimal.NewFromInt(800)},
		{CreatorID: "bea", FinalPrice: decimal.NewFromInt(500), Commission: decimal.NewFromInt(400)},
		{PromoterID: "p1", CreatorID: "ana", FinalPrice: decimal.NewFromInt(760), Commission: decimal.NewFromInt(10)},
	})

	require.Len(t, totals, 4)
	assert.Equal(t, PayeeCreator, totals[0].Kind)
	assert.Equal(t, "ana", totals[0].PayeeID)
	assert.Equal(t, "800", totals[0].Commission.String())
	assert.Equal(t, PayeeCreator, totals[1].Kind)
	assert.Equal(t, "bea", totals[1].PayeeID)
	assert.Equal(t, "400", totals[1].Commission.String())
	assert.Equal(t, PayeePromoter, totals[2].Kind)
	assert.Equal(t, "p1", totals[2].PayeeID)
	assert.Equal(t, 2, totals[2].Sales)
	assert.Equal(t, "60", totals[2].Commission.String())
	assert.Equal(t, PayeeDirect, totals[3].Kind)
	assert.Empty(t, totals[3].PayeeID)
}

func TestGenerateSummary_Creators(t *testing.T) {
	repo := store.NewMemory()
	svc := NewService(sale.NewService(repo, sale.Options{}))

	report := &Report{Totals: Totals([]*sale.Sale{
		{CreatorID: "ana", FinalPrice: decimal.NewFromInt(1000), Commission: decimal.NewFromInt(800)},
		{CreatorID: "bea", FinalPrice: decimal.NewFromInt(500), Commission: decimal.NewFromInt(400)},
		{FinalPrice: decimal.NewFromInt(750), Commission: decimal.Zero},
	})}

	assert.Equal(t,
		"* creator ana | 1 sales | gross UYU 1000.00 | commission UYU 800.00\n"+
			"* creator bea | 1 sales | gross UYU 500.00 | commission UYU 400.00\n"+
			"* (direct) | 1 sales | gross UYU 750.00 | commission UYU 0.00\n",
		svc.GenerateSummary(report, "UYU"))
}
