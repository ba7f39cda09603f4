// Package canfix implements the panel side of the CAN-FIX framing used by
// the bridge: arbitration ids, the 3-byte addressing header that precedes
// every value, and the little-endian value encoding for the data types a
// panel group can carry.
package canfix
