// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing utilities.
//
// Every structured document the tool reads (the configuration schema document
// and the application config file) goes through the same 3-step flow:
//
//  1. Compile the embedded CUE schema
//  2. Build the user document (CUE, YAML, JSON, or TOML) and unify it with the schema
//  3. Validate and decode to a Go struct
//
// # Usage
//
//	//go:embed schema.cue
//	var schemaBytes []byte
//
//	result, err := cueutil.ParseAndDecode[Document](
//	    schemaBytes,
//	    userFileBytes,
//	    "#Document",
//	    cueutil.WithFilename("itkschema.yaml"),
//	)
//	if err != nil {
//	    return nil, err  // Error includes the document path of the offending field
//	}
//	return result.Value, nil
package cueutil
