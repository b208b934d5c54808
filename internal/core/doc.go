// Package core provides the business logic of the gift shipment register:
// reading client and partner spreadsheets, reconciling them with the stored
// collections and writing the courier sheet.
//
// This package holds all domain logic independent of any transport. It is
// used by the web handlers, the giftcrm command and tests without
// modification.
//
// # Import Pipeline
//
// An import turns one workbook into normalized records in three steps:
//
//  1. [sheet.Parse] decodes xlsx, xls or delimited text and
//     [sheet.SelectSheet] picks the sheet for the collection.
//  2. [Materialize] interprets the grid as a header row, as column letters
//     or in field order, whichever is the first to yield usable rows.
//  3. Each row is normalized: headers resolve to canonical fields via
//     [ResolveField], cells are cleaned with [CellValue], street numbers are
//     split from the address and rows failing [Accept] are dropped.
//
// [Importer] runs the pipeline without touching storage and reports the
// outcome in an [ImportResult]; it never returns an error.
//
// # Merge
//
// [Merge] reconciles imported records with a collection. Records match on
// the case-insensitive (nome, azienda) pair, each stored record matches at
// most once, matched records take only the fields the sheet supplied and
// unmatched ones are appended with fresh ids.
//
// # Export
//
// [Exporter] renders every record flagged for GLS as a ten-column
// shipment sheet in the courier's layout.
//
// # Service
//
// [Service] ties the pipeline to a [Store], bounds concurrent imports with
// an [ImportLimiter] and implements soft delete, restore, bulk edit and the
// settings document.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE007: File errors (size, format, missing)
//   - IMP001-IMP003: Import errors (busy, unknown collection)
//   - EXP001: Nothing flagged for export
//   - REC001-REC003: Record errors (not found, not editable, ambiguous)
//   - STO001-STO003: Storage errors
//   - REQ001-REQ003: Request errors (cancelled, timeout, bad body)
package core
