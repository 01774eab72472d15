// Package ddb implements namenode.Catalog on top of Amazon DynamoDB.
//
// Table schema:
//   - Partition key: path (string)
//   - Sort key: block (number); -1 holds the file record, 0..n-1 the blocks
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name blockloc-catalog \
//	  --attribute-definitions AttributeName=path,AttributeType=S AttributeName=block,AttributeType=N \
//	  --key-schema AttributeName=path,KeyType=HASH AttributeName=block,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
//
// File records are written with a conditional put so a writer can never
// replace a file with an older generation.
package ddb
