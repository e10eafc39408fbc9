// (c) Siemens AG 2024
//
// SPDX-License-Identifier: MIT

// Package verifier verifies the reachability of a stream of named IP
// addresses by pinging them, deduplicating verification work for addresses
// shared by multiple names, and streaming quality updates to its consumers.
// [NamedAddressesMap] accumulates such an update stream into a renderable
// snapshot.
package verifier
