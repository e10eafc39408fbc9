// (c) Siemens AG 2024
//
// SPDX-License-Identifier: MIT

package types

// NamedAddress represents a DNS name together with an IP address resolved
// from it and the quality (verification status, [Quality] type) of that
// address.
type NamedAddress interface {
	QualifiedAddress
	Name() string          // the DNS name the address was resolved from
	NA() NamedAddressValue // returns a copy
}

// QualifiedAddress gives access to qualified address information and also
// allows deriving an address with updated quality information.
type QualifiedAddress interface {
	Addr() string              // returns address
	Qual() Quality             // returns Quality
	Err() error                // if Quality is Invalid, optional additional error information.
	QA() QualifiedAddressValue // returns (a copy of) the qualified address information
	// returns a new and updated qualified address
	WithNewQuality(q Quality, err error) QualifiedAddress
}

// NamedAddressValue implements a concrete representation of a [NamedAddress].
// An address-less value (just an FQDN) announces a name whose resolution is
// still in flight.
type NamedAddressValue struct {
	FQDN string // the DNS name
	QualifiedAddressValue
}

var _ NamedAddress = (*NamedAddressValue)(nil)

// Name returns the DNS name associated with the address.
func (na *NamedAddressValue) Name() string {
	return na.FQDN
}

// NA returns (a copy of) the named address information.
func (na *NamedAddressValue) NA() NamedAddressValue {
	return *na
}

// WithNewQuality returns newly qualified (named) address information.
func (na *NamedAddressValue) WithNewQuality(q Quality, err error) QualifiedAddress {
	qa := na.QA()
	qa.Quality = q
	qa.err = err
	return &NamedAddressValue{
		FQDN:                  na.FQDN,
		QualifiedAddressValue: qa,
	}
}

// QualifiedAddressValue is a network address with an associated quality, such
// as unverified, verifying, verified, and invalid.
type QualifiedAddressValue struct {
	Address string  // a single network IP (v4/v6) address
	Quality Quality // quality (verification) state
	err     error   // optional error details for invalid addresses
}

var _ QualifiedAddress = (*QualifiedAddressValue)(nil)

// Addr returns the address.
func (qa *QualifiedAddressValue) Addr() string { return qa.Address }

// Qual return the quality.
func (qa *QualifiedAddressValue) Qual() Quality { return qa.Quality }

// Err returns an optional error that occurred while trying to verify an
// address.
func (qa *QualifiedAddressValue) Err() error { return qa.err }

// QA returns (a copy of) the qualified address information.
func (qa *QualifiedAddressValue) QA() QualifiedAddressValue {
	return *qa
}

// WithNewQuality returns newly qualified address information.
func (qa *QualifiedAddressValue) WithNewQuality(q Quality, err error) QualifiedAddress {
	return &QualifiedAddressValue{
		Address: qa.Address,
		Quality: q,
		err:     err,
	}
}
