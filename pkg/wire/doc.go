// Package wire defines the on-air and backhaul message formats the
// configurator dispatches on: DPP public action frames, the DPP Chirp
// Value TLV, and the 1905.1 Encap DPP TLV.
//
// # Scope
//
// The package covers exactly what dispatch needs: frame headers, frame
// types, the attribute walk, and the two Multi-AP TLVs that carry DPP
// content across the wired backhaul. The cryptographic payloads inside
// Wrapped Data attributes are opaque bytes at this layer.
//
// # Encoding
//
// DPP attributes use little-endian ID and length fields per the Easy
// Connect specification; the 1905.1 TLV fields are big-endian per IEEE
// 1905.1. Both layouts are fixed wire contracts, so encoding is done
// directly with encoding/binary rather than a schema codec.
//
// All parse functions validate lengths before touching content and
// return an error without partial results on malformed input.
package wire
