// Package penalty bans keys (usually client IPs) that collect too many
// strikes within a sliding window.
//
//	box := penalty.New(penalty.Config{Threshold: 5, Window: 10 * time.Minute, BanFor: 15 * time.Minute})
//	eg.Go(box.Run(ctx))
//
//	if banned, until := box.Banned(ip); banned {
//		// reject until `until`
//	}
//	box.Strike(ip) // after every blocked request
//
// A strike arriving after the window has elapsed starts a new window. When
// the count reaches Threshold the key is banned for BanFor and its count is
// reset. A zero Threshold, Window or BanFor disables the box: Banned always
// reports false and Strike is a no-op.
//
// Run removes entries whose ban has expired and whose window is long gone,
// so memory stays proportional to recent offenders.
package penalty
