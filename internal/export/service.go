package export

import (
	"cmp"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/playtimeuy/payments/internal/sale"
)

// PayeeKind tells who is owed the commission of a sale.
type PayeeKind string

const (
	PayeePromoter PayeeKind = "promoter"
	PayeeCreator  PayeeKind = "creator"
	PayeeDirect   PayeeKind = "direct"
)

// PayeeTotal aggregates the paid sales owed to one promoter or creator.
type PayeeTotal struct {
	Kind       PayeeKind
	PayeeID    string
	Sales      int
	Gross      decimal.Decimal
	Commission decimal.Decimal
}

// payeeOf returns the promoter of a referral sale, else the creator, else direct.
func payeeOf(sl *sale.Sale) (PayeeKind, string) {
	switch {
	case sl.PromoterID != "":
		return PayeePromoter, sl.PromoterID
	case sl.CreatorID != "":
		return PayeeCreator, sl.CreatorID
	default:
		return PayeeDirect, ""
	}
}

// Report is the result of a commission export.
type Report struct {
	Path   string
	Sales  []*sale.Sale
	Totals []PayeeTotal
}

// Service exports paid sales so promoter and creator commissions can be settled.
type Service struct {
	sales *sale.Service
}

func NewService(salesSvc *sale.Service) *Service {
	return &Service{sales: salesSvc}
}

var csvHeader = []string{
	"sale_id", "created_at", "paid_at", "promoter_id", "creator_id", "policy",
	"final_price", "base_price", "commission", "net", "payment_id",
}

// Export writes every paid sale matching filter to a CSV file inside outputDir.
// The status in filter is ignored.
func (s *Service) Export(ctx context.Context, filter sale.ListFilter, outputDir string) (*Report, error) {
	filter.Status = new(sale.StatusPaid)

	sales, err := s.sales.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing paid sales: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(outputDir, fileName(filter))
	if err := writeCSV(path, sales); err != nil {
		return nil, err
	}

	return &Report{
		Path:   path,
		Sales:  sales,
		Totals: Totals(sales),
	}, nil
}

func writeCSV(path string, sales []*sale.Sale) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, sl := range sales {
		paidAt := ""
		if sl.PaidAt != nil {
			paidAt = sl.PaidAt.UTC().Format(time.RFC3339)
		}

		err := w.Write([]string{
			sl.ID.String(),
			sl.CreatedAt.UTC().Format(time.RFC3339),
			paidAt,
			sl.PromoterID,
			sl.CreatorID,
			sl.Policy,
			sl.FinalPrice.StringFixed(2),
			sl.BasePrice.StringFixed(2),
			sl.Commission.StringFixed(2),
			sl.Net.StringFixed(2),
			sl.Gateway.PaymentID,
		})
		if err != nil {
			return fmt.Errorf("writing sale %s: %w", sl.ID, err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	return nil
}

// fileName is commissions_all.csv or commissions_YYYYMMDD-YYYYMMDD.csv.
func fileName(filter sale.ListFilter) string {
	if filter.CreatedFrom == nil && filter.CreatedTo == nil {
		return "commissions_all.csv"
	}

	from, to := "start", "now"
	if filter.CreatedFrom != nil {
		from = filter.CreatedFrom.Format("20060102")
	}

	if filter.CreatedTo != nil {
		to = filter.CreatedTo.Format("20060102")
	}

	return fmt.Sprintf("commissions_%s-%s.csv", from, to)
}

// Totals groups sales by payee, largest commission first.
func Totals(sales []*sale.Sale) []PayeeTotal {
	type key struct {
		kind PayeeKind
		id   string
	}

	byPayee := map[key]*PayeeTotal{}

	for _, sl := range sales {
		kind, id := payeeOf(sl)

		t, ok := byPayee[key{kind, id}]
		if !ok {
			t = &PayeeTotal{Kind: kind, PayeeID: id}
			byPayee[key{kind, id}] = t
		}

		t.Sales++
		t.Gross = t.Gross.Add(sl.FinalPrice)
		t.Commission = t.Commission.Add(sl.Commission)
	}

	totals := make([]PayeeTotal, 0, len(byPayee))
	for _, t := range byPayee {
		totals = append(totals, *t)
	}

	slices.SortFunc(totals, func(a, b PayeeTotal) int {
		if c := b.Commission.Cmp(a.Commission); c != 0 {
			return c
		}

		if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
			return c
		}

		return cmp.Compare(a.PayeeID, b.PayeeID)
	})

	return totals
}

// GenerateSummary renders one line per payee for the console.
func (s *Service) GenerateSummary(r *Report, currency string) string {
	var sb strings.Builder

	for _, t := range r.Totals {
		payee := "(direct)"
		if t.Kind != PayeeDirect {
			payee = fmt.Sprintf("%s %s", t.Kind, t.PayeeID)
		}

		fmt.Fprintf(&sb, "* %s | %d sales | gross %s %s | commission %s %s\n",
			payee, t.Sales, currency, t.Gross.StringFixed(2), currency, t.Commission.StringFixed(2))
	}

	if sb.Len() == 0 {
		return "No paid sales in this period.\n"
	}

	return sb.String()
}
