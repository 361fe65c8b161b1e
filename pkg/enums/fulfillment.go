package enums

import "fmt"

// FulfillmentMethodType distinguishes delivery channels.
type FulfillmentMethodType string

const (
	FulfillmentMethodTypeShipping FulfillmentMethodType = "shipping"
	FulfillmentMethodTypePickup   FulfillmentMethodType = "pickup"
)

// IsValid reports whether the value matches the canonical method type enum.
func (f FulfillmentMethodType) IsValid() bool {
	return f == FulfillmentMethodTypeShipping || f == FulfillmentMethodTypePickup
}

// ServiceLevel describes the shipping_rates.service_level column.
type ServiceLevel string

const (
	ServiceLevelStandard  ServiceLevel = "standard"
	ServiceLevelExpress   ServiceLevel = "express"
	ServiceLevelOvernight ServiceLevel = "overnight"
)

var validServiceLevels = []ServiceLevel{
	ServiceLevelStandard,
	ServiceLevelExpress,
	ServiceLevelOvernight,
}

// IsValid reports whether the value matches the canonical service level enum.
func (s ServiceLevel) IsValid() bool {
	for _, candidate := range validServiceLevels {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseServiceLevel converts the raw string to ServiceLevel.
func ParseServiceLevel(value string) (ServiceLevel, error) {
	for _, candidate := range validServiceLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid service level %q", value)
}

// RateCountryDefault is the sentinel country code for rates that apply to any
// destination lacking a country-specific rate.
const RateCountryDefault = "default"
