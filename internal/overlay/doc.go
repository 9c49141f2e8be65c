// Package overlay defines timed text overlay specs and resolves their final
// pixel geometry (centering, greedy wrapping, stacking, frame clamping) for
// the media engine. Resolution is pure and stateless.
package overlay
