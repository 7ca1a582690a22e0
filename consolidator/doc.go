// Package consolidator collapses a live-channel directory gathered from many
// sources into one canonical, deterministically ordered directory.
//
// Sources disagree on labels: the same stream URL shows up as "CCTV1" in a
// group "央视" in one source and as "CCTV-1" in "央视频道" in another. The
// consolidator treats every URL as the unit of truth and lets each
// occurrence vote for a group label and a channel label. Each URL is then
// placed under the winning pair, so it appears exactly once in the output.
//
// # Algorithm
//
//  1. Vote scan: every (group, channel, url) triple with a non-blank URL
//     adds one vote for the group label and one for the channel label of
//     that URL. Channels matched by [Config.Exclude] do not vote; their
//     triples are kept as passthrough records with the original pairing.
//  2. Winner selection: the label with the most votes wins. Ties go to the
//     shorter label (in runes), then to the lexicographically smaller one.
//  3. Hierarchy build: URLs are inserted under their winners in first-seen
//     order, then passthrough records for URLs that received no votes.
//  4. Singleton regroup: a group whose only channel carries the group's
//     own label is dissolved and its channel moved into
//     [Config.CatchAllGroup].
//  5. Sort: groups with more than [Config.LargeGroupThreshold] channels
//     come first, ordered by URLs per channel, then channel count. The
//     rest follow by channel count. Remaining ties go to the shorter label,
//     then the smaller one. Channels sort by label with trailing numbers
//     compared by value, so "CCTV2" precedes "CCTV10".
//
// Labels should be sanitized before consolidation (see the sanitizer
// package) so decorative variants share a vote bucket.
//
// The vote scan can be split across [Config.Workers] goroutines. Partial
// tallies are reduced in partition order with [Tally.Add], which keeps the
// output identical to a sequential scan.
package consolidator
