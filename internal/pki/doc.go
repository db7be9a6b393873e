// SPDX-License-Identifier: MPL-2.0

// Package pki drives the external PKI tool that generates mTLS certificates
// and JWS keys. Arguments are taken from the current item values, so the tool
// writes its artefacts to the paths the env files point at.
package pki
