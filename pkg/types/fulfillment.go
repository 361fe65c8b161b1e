package types

import "github.com/angelmondragon/storemock-backend/pkg/enums"

// FulfillmentState is the jsonb payload stored on a checkout describing its
// fulfillment methods, destinations and option groups.
type FulfillmentState struct {
	Methods []FulfillmentMethod `json:"methods"`
}

// FulfillmentMethod binds line items to a delivery channel.
type FulfillmentMethod struct {
	ID                    string                      `json:"id"`
	Type                  enums.FulfillmentMethodType `json:"type"`
	LineItemIDs           []string                    `json:"line_item_ids,omitempty"`
	Destinations          []FulfillmentDestination    `json:"destinations,omitempty"`
	SelectedDestinationID *string                     `json:"selected_destination_id,omitempty"`
	Groups                []FulfillmentGroup          `json:"groups,omitempty"`
}

// FulfillmentDestination is a candidate delivery address.
type FulfillmentDestination struct {
	ID              string  `json:"id"`
	FullName        *string `json:"full_name,omitempty"`
	StreetAddress   string  `json:"street_address"`
	AddressLocality string  `json:"address_locality"`
	AddressRegion   string  `json:"address_region"`
	PostalCode      string  `json:"postal_code"`
	AddressCountry  string  `json:"address_country"`
}

// FulfillmentGroup binds a subset of line items to a menu of options.
type FulfillmentGroup struct {
	ID               string              `json:"id"`
	LineItemIDs      []string            `json:"line_item_ids,omitempty"`
	Options          []FulfillmentOption `json:"options,omitempty"`
	SelectedOptionID *string             `json:"selected_option_id,omitempty"`

	// SelectedOptionTitle captures the exact option title at selection time,
	// including any free-shipping suffix, for later order expectations.
	SelectedOptionTitle *string `json:"selected_option_title,omitempty"`
}

// FulfillmentOption is one resolved rate offered within a group.
type FulfillmentOption struct {
	ID     string       `json:"id"`
	Title  string       `json:"title"`
	Totals []TotalEntry `json:"totals"`
}

// Price returns the option's total amount.
func (o FulfillmentOption) Price() int {
	for _, entry := range o.Totals {
		if entry.Type == enums.TotalTypeTotal {
			return entry.Amount
		}
	}
	return 0
}

// SelectedDestination returns the destination matching the method's selection.
func (m FulfillmentMethod) SelectedDestination() *FulfillmentDestination {
	if m.SelectedDestinationID == nil {
		return nil
	}
	for i := range m.Destinations {
		if m.Destinations[i].ID == *m.SelectedDestinationID {
			return &m.Destinations[i]
		}
	}
	return nil
}

// HasSelectedOption reports whether any group in the method carries a
// selected option id.
func (m FulfillmentMethod) HasSelectedOption() bool {
	for _, group := range m.Groups {
		if group.SelectedOptionID != nil && *group.SelectedOptionID != "" {
			return true
		}
	}
	return false
}
