// Package schemas holds the JSON Schemas for the files the outline agent reads and writes.
package schemas

import "embed"

// File names of the bundled schemas
const (
	Outline          = "outline.schema.json"
	CollectionInput  = "collection_input.schema.json"
	CollectionOutput = "collection_output.schema.json"
)

// FS holds every bundled schema
//
//go:embed *.schema.json
var FS embed.FS
