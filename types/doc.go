// (c) Siemens AG 2024
//
// SPDX-License-Identifier: MIT

/*
Package types defines dnsdoctor's information model, which revolves around
[QualifiedAddress] and [NamedAddress], as well as the verification [Quality]
of addresses. A [NamedAddress] is a [QualifiedAddress] with an additional
(DNS) name the address was resolved from.

Qualified addresses are immutable: quality updates always derive a new value
via [QualifiedAddress.WithNewQuality]. As address values travel through
channels between the resolving, verifying, and rendering stages, value
semantics behind a getters-only interface keep the stages free of shared
mutable state.

When embedding [QualifiedAddressValue] into an own type it is essential to
(re)implement the WithNewQuality method; the promoted method would otherwise
return a plain QualifiedAddressValue, losing the embedding type's additional
information in the process.
*/
package types
