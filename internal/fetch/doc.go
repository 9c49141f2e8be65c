// Package fetch downloads remote media sources into staging directories
// ahead of composition.
package fetch
