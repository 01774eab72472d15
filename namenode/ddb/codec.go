package ddb

import (
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/blockloc/namenode"
)

func number(v int64) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(v, 10)}
}

func getString(item map[string]types.AttributeValue, name string) (string, error) {
	v, ok := item[name].(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("ddb: invalid %s attribute", name)
	}
	return v.Value, nil
}

func getInt(item map[string]types.AttributeValue, name string) (int64, error) {
	v, ok := item[name].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("ddb: invalid %s attribute", name)
	}
	n, err := strconv.ParseInt(v.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("ddb: failed to parse %s: %w", name, err)
	}
	return n, nil
}

func getUint(item map[string]types.AttributeValue, name string) (uint64, error) {
	v, ok := item[name].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("ddb: invalid %s attribute", name)
	}
	n, err := strconv.ParseUint(v.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("ddb: failed to parse %s: %w", name, err)
	}
	return n, nil
}

// getBool treats a missing attribute as false.
func getBool(item map[string]types.AttributeValue, name string) bool {
	v, ok := item[name].(*types.AttributeValueMemberBOOL)
	return ok && v.Value
}

func decodeFile(path string, item map[string]types.AttributeValue) (namenode.FileInfo, error) {
	size, err := getInt(item, attrSize)
	if err != nil {
		return namenode.FileInfo{}, err
	}
	blockSize, err := getInt(item, attrBlockSize)
	if err != nil {
		return namenode.FileInfo{}, err
	}
	gen, err := getUint(item, attrGeneration)
	if err != nil {
		return namenode.FileInfo{}, err
	}
	return namenode.FileInfo{
		Path:       path,
		Size:       size,
		BlockSize:  blockSize,
		Generation: gen,
		Dir:        getBool(item, attrDir),
	}, nil
}

func decodeBlock(item map[string]types.AttributeValue) (namenode.BlockInfo, error) {
	addr, err := getString(item, attrAddr)
	if err != nil {
		return namenode.BlockInfo{}, err
	}
	offset, err := getInt(item, attrOffset)
	if err != nil {
		return namenode.BlockInfo{}, err
	}
	length, err := getInt(item, attrLength)
	if err != nil {
		return namenode.BlockInfo{}, err
	}
	compression, err := getInt(item, attrCompression)
	if err != nil {
		return namenode.BlockInfo{}, err
	}
	return namenode.BlockInfo{
		Addr:        addr,
		Offset:      offset,
		Length:      length,
		Local:       getBool(item, attrLocal),
		Compression: namenode.Compression(compression),
	}, nil
}
