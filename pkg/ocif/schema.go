package ocif

import _ "embed"

// SchemaURL is the resource URL the embedded schema is registered under.
const SchemaURL = "https://canvasprotocol.org/ocif/v0.4/schema.json"

// SchemaJSON is the JSON Schema (draft-07) every OCIF document is checked
// against.
//
//go:embed ocif.schema.json
var SchemaJSON []byte
