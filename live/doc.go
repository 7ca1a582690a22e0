// Package live models the live-channel directory embedded in a catalog
// under the "lives" field: an ordered list of groups, each holding named
// channels with their playback URLs.
//
// The package converts between that typed model and [document.Document],
// validates raw "lives" arrays collected from many sources ([Normalize]),
// and imports directories published as M3U or plain-text playlists
// ([ParseM3U], [ParseText], [ParsePlaylist]).
//
// Validation follows what player clients tolerate: a group needs a
// non-blank label and at least one channel, a channel needs a non-blank
// name and at least one non-blank URL, and anything referencing proxy://
// is dropped. Entries of the form {"url": "..."} point at a playlist
// instead of embedding one. Those ending in .m3u8 become a one-channel
// group directly; those ending in .m3u or .txt are returned in
// [NormalizeResult.Remote] so the caller can fetch and parse them, then
// put the imported groups back in place with [NormalizeResult.Splice].
package live
