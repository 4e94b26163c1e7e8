// Package db carries the embedded storefront database schema.
package db

import _ "embed"

// Schema holds the DDL for every storefront table, applied at startup.
//
//go:embed migrations/001_schema.sql
var Schema string
