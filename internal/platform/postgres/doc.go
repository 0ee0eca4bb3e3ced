// Package postgres provides PostgreSQL implementations of the store
// interfaces: learners, the shared vocabulary, mastery records, reading
// content, known words and the video catalog. Schema migrations are embedded
// and applied with goose.
package postgres
