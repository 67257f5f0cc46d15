// Package db provides the embedded database schema and catalog seed data.
package db

import _ "embed"

// Schema contains the DDL statements for all application tables.
//
//go:embed migrations/001_schema.sql
var Schema string

// SeedProducts contains the default catalog as JSON, consumed by cmd/seed-db.
//
//go:embed seed/products.json
var SeedProducts []byte
