// Package bundle reads and rewrites fixed-layout game-asset bundle
// archives so that individual entry payloads can be replaced with
// modified content.
//
// A bundle is a 32-byte header, a directory of fixed 320-byte entry
// records, and a payload section in which every payload starts on a
// 4096-byte boundary. The format is only partially understood: several
// header and record fields have unknown semantics and are preserved
// byte-for-byte, and the entry identifier field is never recomputed
// because the consuming application does not validate it.
//
// # Quick Start
//
// Patch a bundle with content from a mod directory:
//
//	a, err := bundle.Open("buffers0.bundle")
//	if err != nil {
//	    return err
//	}
//	src, err := bundle.OpenDirSource("./mods")
//	if err != nil {
//	    return err
//	}
//	defer src.Close()
//	a.ApplyOverrides(src)
//	err = a.WriteFile("buffers0.bundle.new")
//
// Replacing a payload with larger content pushes every later payload
// forward to the next aligned boundary; offsets and the declared total
// size are recomputed on write. Entries can be replaced but never added
// or removed.
//
// # Compression
//
// The format declares a per-entry compression identifier, but scheme 1
// cannot be reliably decoded and other values are unknown. Such payloads
// are carried through as raw bytes: the originally declared identifier is
// re-emitted for entries the codec did not modify, while the payload
// bytes are always stored as read. [Entry.Expand] offers a best-effort
// decode for extraction tooling; it never affects what is written.
package bundle
