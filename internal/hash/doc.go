// Package hash provides the CRC32-Castagnoli checksums sent with object
// store uploads.
//
// crc32.Castagnoli uses SSE4.2 / ARMv8 CRC instructions where available.
package hash
