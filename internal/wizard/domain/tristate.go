package domain

// DataStatus is the tri-state outcome of house-data enrichment. Modeled as
// a typed enum rather than a nullable bool so every consumer handles all
// three states.
type DataStatus string

const (
	// DataUnknown means enrichment has not been attempted this session.
	DataUnknown DataStatus = "unknown"
	// DataFound means enrichment succeeded and the form carries its result.
	DataFound DataStatus = "found"
	// DataNotFound means enrichment failed or the address had no record;
	// downstream steps fall back to manual entry.
	DataNotFound DataStatus = "not_found"
)

// AddressStatus tracks the debounced postal-code lookup.
type AddressStatus string

const (
	// AddressIdle means no lookup has been attempted for the current input.
	AddressIdle AddressStatus = "idle"
	// AddressValidating means a lookup is scheduled or in flight.
	AddressValidating AddressStatus = "validating"
	// AddressFound means street and city resolved.
	AddressFound AddressStatus = "found"
	// AddressNotFound means the lookup returned zero matches.
	AddressNotFound AddressStatus = "not_found"
	// AddressUnverifiable means the lookup itself failed (transport or
	// parse); distinct from not-found for UI purposes.
	AddressUnverifiable AddressStatus = "unverifiable"
)
