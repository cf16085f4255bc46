// Package history records finished runs in SQLite so savings can be reviewed
// later with `squish history`.
//
// Each run stores one row plus one row per artifact report; stage results are
// kept as JSON on the report row. Schema changes bump the version in schema.go
// and users delete the database to adopt the new schema.
package history
