package commands

// PruneUnchanged exports pruneUnchanged for testing.
var PruneUnchanged = pruneUnchanged //nolint:gochecknoglobals // test export

// MergeUpdatedFiles exports mergeUpdatedFiles for testing.
var MergeUpdatedFiles = mergeUpdatedFiles //nolint:gochecknoglobals // test export
