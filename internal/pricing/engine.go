package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storemock-backend/pkg/enums"
	"github.com/angelmondragon/storemock-backend/pkg/types"
)

// LineItem is the pricing view of one checkout line.
type LineItem struct {
	UnitPriceCents int
	Quantity       int
}

// Discount is the pricing view of one applied code.
type Discount struct {
	Code  string
	Type  enums.DiscountType
	Value int
}

// Result carries recomputed checkout totals in cents.
type Result struct {
	SubtotalCents int
	DiscountCents int
	TotalCents    int
}

// Recalculate derives subtotal, discount and total from scratch. Discounts
// apply sequentially: each one reduces the running total left by the previous,
// not the original subtotal. Percentage amounts are derived from the floored
// new running total so the reported discount and the charged total never
// disagree by a rounding cent.
func Recalculate(items []LineItem, discounts []Discount, fulfillmentCents int) Result {
	subtotal := 0
	for _, item := range items {
		subtotal += item.UnitPriceCents * item.Quantity
	}

	running := subtotal
	discountAmount := 0
	for _, d := range discounts {
		switch d.Type {
		case enums.DiscountTypePercentage:
			newRunning := running * (100 - d.Value) / 100
			discountAmount += running - newRunning
			running = newRunning
		default:
			discountAmount += d.Value
			running -= d.Value
			if running < 0 {
				running = 0
			}
		}
	}

	discounted := subtotal - discountAmount
	if discounted < 0 {
		discounted = 0
	}
	total := discounted + fulfillmentCents
	if total < 0 {
		total = 0
	}

	return Result{
		SubtotalCents: subtotal,
		DiscountCents: discountAmount,
		TotalCents:    total,
	}
}

// BuildTotals assembles the response totals array. Zero-amount entries are
// omitted except the final total, which is always present.
func BuildTotals(res Result, fulfillmentCents int) []types.TotalEntry {
	totals := []types.TotalEntry{}

	if res.SubtotalCents > 0 {
		totals = append(totals, types.TotalEntry{
			Type:        enums.TotalTypeSubtotal,
			DisplayText: "Subtotal",
			Amount:      res.SubtotalCents,
		})
	}
	if res.DiscountCents > 0 {
		totals = append(totals, types.TotalEntry{
			Type:        enums.TotalTypeDiscount,
			DisplayText: "Discount",
			Amount:      res.DiscountCents,
		})
	}
	if fulfillmentCents > 0 {
		totals = append(totals, types.TotalEntry{
			Type:        enums.TotalTypeFulfillment,
			DisplayText: "Shipping",
			Amount:      fulfillmentCents,
		})
	}

	total := res.TotalCents
	if total < 0 {
		total = 0
	}
	totals = append(totals, types.TotalEntry{
		Type:        enums.TotalTypeTotal,
		DisplayText: "Total",
		Amount:      total,
	})

	return totals
}

// BuildDiscounts assembles the response discounts block with per-code applied
// amounts, replaying the same sequential application as Recalculate. Returns
// nil when no codes are applied.
func BuildDiscounts(subtotal int, discounts []Discount) *types.DiscountsBlock {
	if len(discounts) == 0 {
		return nil
	}

	running := subtotal
	codes := make([]string, 0, len(discounts))
	applied := make([]types.AppliedDiscount, 0, len(discounts))

	for _, d := range discounts {
		if d.Code != "" {
			codes = append(codes, d.Code)
		}

		var amount int
		var title string
		switch d.Type {
		case enums.DiscountTypePercentage:
			newRunning := running * (100 - d.Value) / 100
			amount = running - newRunning
			title = percentTitle(d.Value)
			running = newRunning
		default:
			amount = d.Value
			title = fixedTitle(d.Value)
			running -= amount
			if running < 0 {
				running = 0
			}
		}

		applied = append(applied, types.AppliedDiscount{
			Code:   d.Code,
			Title:  title,
			Amount: amount,
		})
	}

	return &types.DiscountsBlock{Codes: codes, Applied: applied}
}

func percentTitle(value int) string {
	return decimal.NewFromInt(int64(value)).String() + "% Off"
}

func fixedTitle(cents int) string {
	dollars := decimal.NewFromInt(int64(cents)).Div(decimal.NewFromInt(100))
	return "$" + dollars.StringFixed(2) + " Off"
}
