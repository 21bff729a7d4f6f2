// Package io reads OCIF documents and writes rendered artifacts.
//
// # Overview
//
// Documents are read as raw bytes, never decoded here: validation needs the
// original text to report line and column positions. Reads are bounded so a
// huge upload cannot exhaust memory.
//
// # Import
//
// Use [ReadFile] to read a document from a .json or .json5 file, or
// [ReadDocument] to read from any io.Reader:
//
//	src, err := io.ReadFile("canvas.ocif.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Export
//
// [WriteFile] writes an artifact, creating parent directories as needed.
// [OutputPath] derives an artifact name from the input file and format:
//
//	io.OutputPath("canvas.ocif.json", "", "svg") // "canvas.ocif.svg"
//
// # Thread Safety
//
// All functions in this package are safe to call concurrently.
package io
