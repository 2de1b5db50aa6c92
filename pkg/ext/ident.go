package ext

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"

	"github.com/sandrolain/goformula/pkg/evaluator"
)

// Ident returns the identifier and digest functions: @uuid, @hash.
//
// Security note: @hash is provided for fingerprinting and cache keys, not
// for password storage.
func Ident() map[string]evaluator.Function {
	return map[string]evaluator.Function{
		"uuid": uuidFn,
		"hash": hashFn,
	}
}

// uuidFn implements @uuid(), generating a random UUID v4 string.
func uuidFn(args ...interface{}) (interface{}, error) {
	if err := argCount("uuid", args, 0); err != nil {
		return nil, err
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	return id.String(), nil
}

// hashFn implements @hash(str), returning the lowercase hex SHA-256 digest.
func hashFn(args ...interface{}) (interface{}, error) {
	if err := argCount("hash", args, 1); err != nil {
		return nil, err
	}
	s, err := argString("hash", args, 0)
	if err != nil {
		return nil, err
	}
	digest := sha256.Sum256([]byte(s))
	return hex.EncodeToString(digest[:]), nil
}
