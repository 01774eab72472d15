// Package namenode defines the metadata service a client consults to resolve
// where the blocks of a file live.
//
// A Catalog answers two questions: what a file looks like (Stat) and where a
// given block of it is stored (Lookup). MemoryCatalog is an in-process
// implementation for tests and embedded use; namenode/dynamodb keeps the same
// records in a DynamoDB table.
package namenode
