// Package shell owns the displayed code graph.
//
// The [Shell] is the single owner of the current model: it accepts new
// analysis results (loaded locally or uploaded to the analysis backend),
// normalizes them, lays them out and hands read-only views to the
// interaction controller. Every accepted model gets a new version and id.
//
// Replacement is ordered: interaction state of the old model is torn down
// before the new model is installed, and a result that was started before
// a newer one can never overwrite it. Callers take a [Ticket] with
// [Shell.Begin] before starting slow work and pass it to [Shell.Apply]; a
// ticket that is no longer the newest is rejected with STALE_RESULT.
//
// Failures never replace the model. A malformed result or a failed upload
// keeps the previous graph on screen and leaves a user-facing message in
// [Shell.Notice].
package shell
