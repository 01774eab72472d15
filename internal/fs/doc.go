// Package fs abstracts the file system operations of the local data tier so
// tests can inject write failures.
//
//   - [LocalFS]: the os package
//   - [FaultyFS]: fails writes, syncs, closes or renames of matching files
//
// Operations take no context: they are local syscalls that cannot be
// interrupted.
package fs
