package sale

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	PolicyFlat       = "flat"
	PolicyPercentage = "percentage"
)

// ErrBelowBasePrice is returned by FlatPolicy when the final price does not cover the base price.
var ErrBelowBasePrice = errors.New("final price below base price")

// Split divides a final price between the referring party and the platform.
type Split struct {
	Commission decimal.Decimal
	Net        decimal.Decimal
}

// SplitPolicy computes the commission split for a final price. Implementations are pure.
type SplitPolicy interface {
	Name() string
	Split(finalPrice decimal.Decimal) (Split, error)
}

// FlatPolicy gives the platform a fixed base price and the promoter everything above it.
type FlatPolicy struct {
	Base decimal.Decimal
}

func (p FlatPolicy) Name() string { return PolicyFlat }

func (p FlatPolicy) Split(finalPrice decimal.Decimal) (Split, error) {
	if finalPrice.LessThan(p.Base) {
		return Split{}, fmt.Errorf("%w: %s < %s", ErrBelowBasePrice, finalPrice, p.Base)
	}

	return Split{
		Commission: finalPrice.Sub(p.Base),
		Net:        p.Base,
	}, nil
}

// PercentagePolicy keeps PlatformShare of the final price for the platform
// and pays the remainder to the creator.
type PercentagePolicy struct {
	PlatformShare decimal.Decimal
}

func (p PercentagePolicy) Name() string { return PolicyPercentage }

func (p PercentagePolicy) Split(finalPrice decimal.Decimal) (Split, error) {
	if !finalPrice.IsPositive() {
		return Split{}, fmt.Errorf("final price must be positive, got %s", finalPrice)
	}

	net := finalPrice.Mul(p.PlatformShare).Round(2)

	return Split{
		Commission: finalPrice.Sub(net),
		Net:        net,
	}, nil
}

// NewSplitPolicy builds the policy named by name.
func NewSplitPolicy(name string, base, platformShare decimal.Decimal) (SplitPolicy, error) {
	switch name {
	case PolicyFlat:
		return FlatPolicy{Base: base}, nil
	case PolicyPercentage:
		if platformShare.IsNegative() || platformShare.GreaterThan(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("platform share must be within [0, 1], got %s", platformShare)
		}

		return PercentagePolicy{PlatformShare: platformShare}, nil
	default:
		return nil, fmt.Errorf("unknown commission policy %q", name)
	}
}
