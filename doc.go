// Package notekeep is the composition root for note storage.
//
// A note is a small record (workspace, title, body) identified by an opaque
// random key. Storage backends implement a set of narrow capabilities
// (save, delete, get, list) that compose into a full store, so callers can
// depend on only what they use.
//
// Bundled backends:
//
//   - fs: one file per note at {dir}/{key}, JSON by default or YAML.
//     Writes go through a temp file and a rename.
//   - memory: a map, for tests and ephemeral use.
//   - sqlite: a single table through GORM and a pure-Go driver.
//
// Usage:
//
//	svc, err := notekeep.New("./store", notekeep.WithLogger(logger))
//	key, err := svc.SaveNote(ctx, notekeep.NewEntry("work", "Title", "Body"))
//	note, ok := svc.GetNote(ctx, key)
package notekeep
