// Package database exports survey results to SQLite.
//
// Each export is a fresh file holding one run:
//   - relevamiento: the Relevamiento table, one row per institution
//   - resumen: the Resumen table, one row per statistic
//   - coincidencias: every keyword hit with its context
//   - paginas: every attempted URL with its outcome
//
// modernc.org/sqlite is a CGO-free driver, so the binary cross-compiles
// without a C toolchain.
package database
