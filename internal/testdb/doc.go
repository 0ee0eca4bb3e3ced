// Package testdb provides utilities for database integration tests.
//
// Tests call GetTestDBWithT, which skips the test when DATABASE_URL is unset
// and otherwise returns a migrated connection. Each test then runs inside
// WithTx, whose transaction is always rolled back, so tests can run in
// parallel against one database without cleanup.
package testdb
