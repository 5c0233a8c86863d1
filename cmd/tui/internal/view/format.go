package view

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	dbTimeout      = 5 * time.Second
	gatewayTimeout = 30 * time.Second
)

// MoneyFormatter renders amounts with the grouping rules of a locale.
type MoneyFormatter struct {
	p *message.Printer
}

func NewMoneyFormatter(tag language.Tag) MoneyFormatter {
	return MoneyFormatter{p: message.NewPrinter(tag)}
}

func (f MoneyFormatter) Format(amount decimal.Decimal, currency string) string {
	v, _ := amount.Round(2).Float64()
	return f.p.Sprintf("%s %.2f", currency, v)
}

var money = NewMoneyFormatter(language.MustParse("es-UY"))

// FormatDate formats a time.Time into YYYY-MM-DD HH:MM.
func FormatDate(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
