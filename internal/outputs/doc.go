// Package outputs keeps a SQLite catalog of finished artifacts. Job state
// lives in memory and resets on restart; the catalog is what remembers which
// files were produced and for which job.
package outputs
