package ddb

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/blockloc/namenode"
)

const (
	attrPath        = "path"
	attrBlock       = "block"
	attrSize        = "size"
	attrBlockSize   = "block_size"
	attrGeneration  = "generation"
	attrDir         = "dir"
	attrAddr        = "addr"
	attrOffset      = "offset"
	attrLength      = "length"
	attrLocal       = "local"
	attrCompression = "compression"

	fileRecord int64 = -1
)

// ErrStaleGeneration is returned by PutFile when the table already holds the
// same or a newer generation of the file.
var ErrStaleGeneration = errors.New("ddb: stale file generation")

// Client is the subset of the DynamoDB API the catalog uses.
type Client interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Catalog implements namenode.Catalog backed by a DynamoDB table.
type Catalog struct {
	client         Client
	table          string
	consistentRead bool
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithConsistentRead makes Stat and Lookup use strongly consistent reads.
func WithConsistentRead() Option {
	return func(c *Catalog) {
		c.consistentRead = true
	}
}

// NewCatalog creates a catalog reading and writing table.
func NewCatalog(client Client, table string, opts ...Option) *Catalog {
	c := &Catalog{
		client: client,
		table:  table,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func itemKey(path string, block int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPath:  &types.AttributeValueMemberS{Value: path},
		attrBlock: &types.AttributeValueMemberN{Value: strconv.FormatInt(block, 10)},
	}
}

func (c *Catalog) getItem(ctx context.Context, path string, block int64) (map[string]types.AttributeValue, error) {
	resp, err := c.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(c.table),
		Key:            itemKey(path, block),
		ConsistentRead: aws.Bool(c.consistentRead),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item from DynamoDB: %w", err)
	}
	if len(resp.Item) == 0 {
		return nil, namenode.ErrNotFound
	}
	return resp.Item, nil
}

// Stat implements namenode.Catalog.
func (c *Catalog) Stat(ctx context.Context, path string) (namenode.FileInfo, error) {
	item, err := c.getItem(ctx, path, fileRecord)
	if err != nil {
		if errors.Is(err, namenode.ErrNotFound) {
			return namenode.FileInfo{}, fmt.Errorf("%w: %s", namenode.ErrNotFound, path)
		}
		return namenode.FileInfo{}, err
	}
	return decodeFile(path, item)
}

// Lookup implements namenode.Catalog.
func (c *Catalog) Lookup(ctx context.Context, path string, index int64) (namenode.BlockInfo, error) {
	if index < 0 {
		return namenode.BlockInfo{}, fmt.Errorf("%w: %s block %d", namenode.ErrNotFound, path, index)
	}
	item, err := c.getItem(ctx, path, index)
	if err != nil {
		if errors.Is(err, namenode.ErrNotFound) {
			return namenode.BlockInfo{}, fmt.Errorf("%w: %s block %d", namenode.ErrNotFound, path, index)
		}
		return namenode.BlockInfo{}, err
	}
	return decodeBlock(item)
}

// PutFile writes the block locations and then the file record of info.
// The file record is only written if no record of the same or a newer
// generation exists.
func (c *Catalog) PutFile(ctx context.Context, info namenode.FileInfo, blocks []namenode.BlockInfo) error {
	if int64(len(blocks)) != info.Blocks() {
		return fmt.Errorf("ddb: %s spans %d blocks, got %d locations", info.Path, info.Blocks(), len(blocks))
	}

	for i, b := range blocks {
		if err := c.PutBlock(ctx, info.Path, int64(i), b); err != nil {
			return err
		}
	}

	item := itemKey(info.Path, fileRecord)
	item[attrSize] = number(info.Size)
	item[attrBlockSize] = number(info.BlockSize)
	item[attrGeneration] = &types.AttributeValueMemberN{Value: strconv.FormatUint(info.Generation, 10)}
	item[attrDir] = &types.AttributeValueMemberBOOL{Value: info.Dir}

	_, err := c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(#gen) OR #gen < :gen"),
		ExpressionAttributeNames: map[string]string{
			"#gen": attrGeneration,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":gen": item[attrGeneration],
		},
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrStaleGeneration
		}
		return fmt.Errorf("failed to put file record to DynamoDB: %w", err)
	}
	return nil
}

// PutBlock writes the location of one block.
func (c *Catalog) PutBlock(ctx context.Context, path string, index int64, b namenode.BlockInfo) error {
	item := itemKey(path, index)
	item[attrAddr] = &types.AttributeValueMemberS{Value: b.Addr}
	item[attrOffset] = number(b.Offset)
	item[attrLength] = number(b.Length)
	item[attrLocal] = &types.AttributeValueMemberBOOL{Value: b.Local}
	item[attrCompression] = number(int64(b.Compression))

	_, err := c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put block %d of %s to DynamoDB: %w", index, path, err)
	}
	return nil
}

// DeleteFile removes the file record and all block records of path.
func (c *Catalog) DeleteFile(ctx context.Context, path string) error {
	var startKey map[string]types.AttributeValue
	for {
		resp, err := c.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(c.table),
			KeyConditionExpression: aws.String("#p = :p"),
			ExpressionAttributeNames: map[string]string{
				"#p": attrPath,
				"#b": attrBlock,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":p": &types.AttributeValueMemberS{Value: path},
			},
			ProjectionExpression: aws.String("#p, #b"),
			ExclusiveStartKey:    startKey,
		})
		if err != nil {
			return fmt.Errorf("failed to query DynamoDB: %w", err)
		}

		for _, item := range resp.Items {
			if _, err := c.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName: aws.String(c.table),
				Key: map[string]types.AttributeValue{
					attrPath:  item[attrPath],
					attrBlock: item[attrBlock],
				},
			}); err != nil {
				return fmt.Errorf("failed to delete item from DynamoDB: %w", err)
			}
		}

		if len(resp.LastEvaluatedKey) == 0 {
			return nil
		}
		startKey = resp.LastEvaluatedKey
	}
}
