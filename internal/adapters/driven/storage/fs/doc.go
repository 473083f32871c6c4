// Package fs provides the filesystem implementation of the profile store.
//
// Profiles are written as pretty-printed JSON, one file per document,
// in a tree mirroring the corpus folder structure. Parse failures are
// accumulated in failed_files.json at the tree root.
//
// The mirrored layout keeps profiles greppable and diffable next to
// their source folders; nothing else in the pipeline depends on it.
package fs
