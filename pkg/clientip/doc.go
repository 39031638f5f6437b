// Package clientip extracts the client IP address from HTTP requests and
// masks it for display.
//
// # Header Priority
//
// GetIP checks headers in this order and returns the first valid address:
//  1. CF-Connecting-IP (Cloudflare)
//  2. DO-Connecting-IP (DigitalOcean)
//  3. X-Forwarded-For (leftmost entry)
//  4. X-Real-IP
//  5. RemoteAddr
//
// Invalid values and the unspecified address 0.0.0.0 are skipped. Addresses
// are normalized with net.IP.String. If nothing valid is found the raw
// RemoteAddr is returned, so GetIP never returns an error.
//
// Headers are trusted as sent. Deploy behind a proxy that overwrites them.
//
// # Masking
//
// Mask hides the host part of an address before it is shown to a client:
//
//	clientip.Mask("203.0.113.42")   // "203.0.113.xxx"
//	clientip.Mask("2001:db8:1::7")  // "2001:db8:1::"
package clientip
