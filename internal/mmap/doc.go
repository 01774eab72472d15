// Package mmap maps local block files read-only into memory.
//
// On unix platforms files are mapped with golang.org/x/sys/unix and advised
// for random access, matching the scattered block reads of a stream. Other
// platforms fall back to reading the file into a heap buffer.
package mmap
