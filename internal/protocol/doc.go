// Package protocol implements the ejabberd external authentication wire
// format.
//
// Requests are a 2-byte big-endian length followed by that many bytes of
// colon-delimited text whose first field is the verb:
//
//	auth:<user>:<domain>:<password>
//	isuser:<user>:<domain>
//	setpass:<user>:<domain>:<password>
//
// Replies are always four bytes: a constant length of 2 followed by a
// 16-bit boolean. The format is fixed by the host and is not negotiated.
package protocol
