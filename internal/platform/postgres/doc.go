// Package postgres implements store.FlashcardStore on PostgreSQL.
//
// Queries are built with squirrel and run through database/sql using the
// pgx stdlib driver. The schema lives in the migrations subpackage and is
// applied with goose by Migrate.
package postgres
