package fulfillment

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/angelmondragon/storemock-backend/pkg/db/models"
	"github.com/angelmondragon/storemock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storemock-backend/pkg/errors"
	"github.com/angelmondragon/storemock-backend/pkg/types"
)

const (
	defaultMethodID = "shipping_method_0"
	freeTitleSuffix = " (Free)"
)

// Resolver turns the rate table and active promotions into the fulfillment
// options offered on a checkout.
type Resolver struct {
	repo Repository
}

// NewResolver constructs a resolver over the rate repository.
func NewResolver(repo Repository) (*Resolver, error) {
	if repo == nil {
		return nil, fmt.Errorf("fulfillment repository is required")
	}
	return &Resolver{repo: repo}, nil
}

// WithTx rebinds the resolver's repository to a transaction.
func (r *Resolver) WithTx(tx *gorm.DB) *Resolver {
	if tx == nil {
		return r
	}
	return &Resolver{repo: r.repo.WithTx(tx)}
}

// CalculateOptions resolves shipping options for a destination country.
// Per service level the country-specific rate beats the "default" row, the
// result is sorted ascending by the rate's listed price, and a matching
// free-shipping promotion zeroes the standard level only, suffixing its
// title. Unknown countries fall back to whatever "default" rows exist; an
// empty rate table yields an empty list.
func (r *Resolver) CalculateOptions(ctx context.Context, countryCode string, productIDs []string, subtotalCents int) ([]types.FulfillmentOption, error) {
	if countryCode == "" {
		return []types.FulfillmentOption{}, nil
	}

	freeShipping, err := r.freeShippingEligible(ctx, productIDs, subtotalCents)
	if err != nil {
		return nil, err
	}

	rates, err := r.repo.ListRatesForCountry(ctx, countryCode)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing shipping rates")
	}

	// One rate per service level, country-specific winning over default.
	byLevel := make(map[enums.ServiceLevel]models.ShippingRate)
	levelOrder := []enums.ServiceLevel{}
	for _, rate := range rates {
		existing, seen := byLevel[rate.ServiceLevel]
		if !seen {
			byLevel[rate.ServiceLevel] = rate
			levelOrder = append(levelOrder, rate.ServiceLevel)
			continue
		}
		if existing.CountryCode == enums.RateCountryDefault && rate.CountryCode != enums.RateCountryDefault {
			byLevel[rate.ServiceLevel] = rate
		}
	}

	selected := make([]models.ShippingRate, 0, len(levelOrder))
	for _, level := range levelOrder {
		selected = append(selected, byLevel[level])
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].PriceCents < selected[j].PriceCents
	})

	options := make([]types.FulfillmentOption, 0, len(selected))
	for _, rate := range selected {
		price := rate.PriceCents
		title := rate.Title
		if freeShipping && rate.ServiceLevel == enums.ServiceLevelStandard {
			price = 0
			title += freeTitleSuffix
		}
		options = append(options, types.FulfillmentOption{
			ID:    rate.ID,
			Title: title,
			Totals: []types.TotalEntry{
				{Type: enums.TotalTypeSubtotal, Amount: price},
				{Type: enums.TotalTypeTotal, Amount: price},
			},
		})
	}

	return options, nil
}

// ApplySelections resolves every selected option in the state to a price and
// exact title, stamping the title on the group for later order expectations.
// Selections are looked up in the group's options first, then the rate table;
// ids unknown to both contribute nothing. Returns the summed price.
func (r *Resolver) ApplySelections(ctx context.Context, state *types.FulfillmentState, productIDs []string, subtotalCents int) (int, error) {
	if state == nil {
		return 0, nil
	}

	totalPrice := 0
	for mi := range state.Methods {
		method := &state.Methods[mi]
		for gi := range method.Groups {
			group := &method.Groups[gi]
			if group.SelectedOptionID == nil || *group.SelectedOptionID == "" {
				continue
			}
			selectedID := *group.SelectedOptionID

			resolved := false
			for _, opt := range group.Options {
				if opt.ID == selectedID {
					title := opt.Title
					group.SelectedOptionTitle = &title
					totalPrice += opt.Price()
					resolved = true
					break
				}
			}
			if resolved {
				continue
			}

			// Options may not be materialized on the group yet. Fall back to
			// the rate table directly.
			rate, err := r.repo.FindRateByID(ctx, selectedID)
			if err != nil {
				return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up shipping rate")
			}
			if rate == nil {
				continue
			}

			price := rate.PriceCents
			title := rate.Title
			if rate.ServiceLevel == enums.ServiceLevelStandard {
				free, err := r.freeShippingEligible(ctx, productIDs, subtotalCents)
				if err != nil {
					return 0, err
				}
				if free {
					price = 0
					title += freeTitleSuffix
				}
			}
			group.SelectedOptionTitle = &title
			totalPrice += price
		}
	}

	return totalPrice, nil
}

// Refresh materializes the response view of a fulfillment state: a skeleton
// shipping method when nothing is stored, and freshly calculated options on
// every group once a destination is selected.
func (r *Resolver) Refresh(ctx context.Context, state *types.FulfillmentState, lineItemIDs, productIDs []string, subtotalCents int) (*types.FulfillmentState, error) {
	if state == nil || len(state.Methods) == 0 {
		return &types.FulfillmentState{
			Methods: []types.FulfillmentMethod{{
				ID:           defaultMethodID,
				Type:         enums.FulfillmentMethodTypeShipping,
				LineItemIDs:  lineItemIDs,
				Destinations: []types.FulfillmentDestination{},
				Groups:       []types.FulfillmentGroup{},
			}},
		}, nil
	}

	for mi := range state.Methods {
		method := &state.Methods[mi]
		if method.ID == "" {
			method.ID = fmt.Sprintf("shipping_method_%d", mi)
		}
		if method.Type == "" {
			method.Type = enums.FulfillmentMethodTypeShipping
		}
		if method.LineItemIDs == nil {
			method.LineItemIDs = lineItemIDs
		}

		dest := method.SelectedDestination()
		if dest == nil {
			continue
		}

		countryCode := dest.AddressCountry
		if countryCode == "" {
			countryCode = "US"
		}
		options, err := r.CalculateOptions(ctx, countryCode, productIDs, subtotalCents)
		if err != nil {
			return nil, err
		}

		if len(method.Groups) == 0 {
			method.Groups = []types.FulfillmentGroup{{
				ID:          fmt.Sprintf("group_%d_0", mi),
				LineItemIDs: method.LineItemIDs,
				Options:     options,
			}}
			continue
		}
		for gi := range method.Groups {
			group := &method.Groups[gi]
			if group.ID == "" {
				group.ID = fmt.Sprintf("group_%d_%d", mi, gi)
			}
			if group.LineItemIDs == nil {
				group.LineItemIDs = method.LineItemIDs
			}
			group.Options = options
		}
	}

	return state, nil
}

func (r *Resolver) freeShippingEligible(ctx context.Context, productIDs []string, subtotalCents int) (bool, error) {
	promos, err := r.repo.ListFreeShippingPromotions(ctx)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing promotions")
	}

	for _, promo := range promos {
		if promo.MinSubtotalCents != nil && *promo.MinSubtotalCents > 0 && subtotalCents >= *promo.MinSubtotalCents {
			return true, nil
		}
		if len(promo.EligibleItemIDs) > 0 {
			eligible := make(map[string]struct{}, len(promo.EligibleItemIDs))
			for _, id := range promo.EligibleItemIDs {
				eligible[id] = struct{}{}
			}
			for _, pid := range productIDs {
				if _, ok := eligible[pid]; ok {
					return true, nil
				}
			}
		}
	}
	return false, nil
}
