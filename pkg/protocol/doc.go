// Package protocol implements the JSON wire protocol spoken by the arm
// firmware: command encoding, telemetry decoding and frame reassembly.
//
// Frames are flat JSON objects with a numeric "T" discriminator. There is no
// length prefix or delimiter; a frame ends at the first '}' after the start
// of the buffered data.
package protocol
