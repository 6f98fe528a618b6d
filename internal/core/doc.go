// Package core loads the restaurant dataset and answers searches against it.
//
// This package holds all domain logic independent of any UI or transport
// layer. The web server, the CLI and the tests all use it the same way.
//
// # Loading
//
// [Load] reads a delimited file once, decodes it with the first encoding in
// a [DecodingLadder] that accepts the bytes, normalizes the headers, checks
// that every required column is present, and coerces each row:
//
//	table, err := core.Load("zomato.csv", core.LoadOptions{})
//
// Bad cells never fail a load. Blank text becomes a per-column default and
// non-numeric or negative numbers become 0. Everything else that can go
// wrong is reported as a [*LoadError] whose Kind is one of NotFound, Empty,
// Decode, MissingFields or Unexpected.
//
// [LoadSnapshot] turns the outcome into a [Snapshot]: either a usable Table,
// or an empty Table paired with the load error. A Snapshot is an ordinary
// value, so tests can hold a valid and a broken one side by side.
//
// # Searching
//
// [Search] filters a Snapshot by case-insensitive substring on cuisines and
// locality (both must match when both are given), sorts by rating and votes
// descending then name ascending, and projects to the display columns. The
// [Result] is exactly one of OK (records), Empty (no criteria or no matches)
// or Error (the table is unavailable), and always carries a renderable
// [UserMessage] when it is not OK.
//
// # Reloading
//
// [Service] holds the current Snapshot in an atomic pointer. Searches read
// it without locking; [Service.Reload] builds a new Snapshot and swaps it in,
// keeping the previous one when it was usable and the reload failed.
// [Service.StartReloadScheduler] reloads when the file's modification time
// changes.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each category has a code for support reference:
//
//   - DATA001-DATA005: Dataset load failures
//   - QRY001-QRY003: Search outcomes
//   - RLD001, RATE001, REQ001-REQ002: Request handling
package core
