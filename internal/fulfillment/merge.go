package fulfillment

import (
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/storemock-backend/pkg/types"
)

const destIDPrefix = "dest_"

// Merge folds an incoming fulfillment patch into the stored state. Incoming
// methods match stored ones by id first, then by type. A matched method is
// overlaid field-wise: fields absent from the patch keep their stored value,
// so a patch that only selects a destination does not wipe the destination
// list. Unmatched methods are appended.
func Merge(existing, incoming *types.FulfillmentState) *types.FulfillmentState {
	if incoming == nil {
		return existing
	}
	if existing == nil || len(existing.Methods) == 0 {
		merged := *incoming
		return &merged
	}

	merged := &types.FulfillmentState{Methods: append([]types.FulfillmentMethod{}, existing.Methods...)}

	for _, patch := range incoming.Methods {
		idx := -1
		for i, method := range merged.Methods {
			if (patch.ID != "" && method.ID == patch.ID) || (patch.Type != "" && method.Type == patch.Type) {
				idx = i
				break
			}
		}
		if idx < 0 {
			merged.Methods = append(merged.Methods, patch)
			continue
		}

		current := merged.Methods[idx]
		if patch.ID == "" {
			patch.ID = current.ID
		}
		if patch.Type == "" {
			patch.Type = current.Type
		}
		if patch.LineItemIDs == nil {
			patch.LineItemIDs = current.LineItemIDs
		}
		if patch.Destinations == nil {
			patch.Destinations = current.Destinations
		}
		if patch.SelectedDestinationID == nil {
			patch.SelectedDestinationID = current.SelectedDestinationID
		}
		if patch.Groups == nil {
			patch.Groups = current.Groups
		}
		merged.Methods[idx] = patch
	}

	return merged
}

// AssignDestinationIDs gives every destination missing an id a fresh
// dest_-prefixed handle so clients can select it on a later update.
func AssignDestinationIDs(state *types.FulfillmentState) {
	if state == nil {
		return
	}
	for mi := range state.Methods {
		for di := range state.Methods[mi].Destinations {
			dest := &state.Methods[mi].Destinations[di]
			if dest.ID == "" {
				dest.ID = destIDPrefix + shortID()
			}
		}
	}
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
