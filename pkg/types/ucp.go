package types

// UCPVersion is the protocol version this server speaks.
const UCPVersion = "2026-01-11"

const (
	CapabilityCheckout = "dev.ucp.shopping.checkout"
	CapabilityOrder    = "dev.ucp.shopping.order"
)

// UCPEnvelope announces the protocol version and capabilities on responses.
type UCPEnvelope struct {
	Version      string          `json:"version"`
	Capabilities []UCPCapability `json:"capabilities"`
}

type UCPCapability struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// NewUCPEnvelope builds the envelope for a single capability.
func NewUCPEnvelope(capability string) UCPEnvelope {
	return UCPEnvelope{
		Version: UCPVersion,
		Capabilities: []UCPCapability{
			{Name: capability, Version: UCPVersion},
		},
	}
}
