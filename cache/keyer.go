package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// Keyer generates deterministic cache keys from operation parameters.
//
// Contract:
// - Determinism: same logical inputs must produce the same key, regardless
//   of map iteration order, across processes and restarts.
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: a non-serializable argument is a caller error; implementations
//   must return it rather than degrade to a partial key.
type Keyer interface {
	// Key generates a cache key from an operation name and its arguments.
	// Empty args and kwargs are valid inputs.
	Key(op string, args []any, kwargs map[string]any) (string, error)
}

// DefaultKeyer generates SHA-256 based cache keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a new default keyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Key generates a deterministic cache key.
// Format: op:<name>:<hash>
// where hash is the hex form of SHA-256 over the operation name and the
// canonical JSON of args and kwargs, NUL-separated. The name prefix keeps
// keys for one operation addressable by pattern invalidation.
func (k *DefaultKeyer) Key(op string, args []any, kwargs map[string]any) (string, error) {
	argBytes, err := canonicalizeSlice(args)
	if err != nil {
		return "", fmt.Errorf("%w: args: %v", ErrNotSerializable, err)
	}
	kwargBytes, err := canonicalizeMap(kwargs)
	if err != nil {
		return "", fmt.Errorf("%w: kwargs: %v", ErrNotSerializable, err)
	}

	h := sha256.New()
	h.Write([]byte(op))
	h.Write([]byte{0})
	h.Write(argBytes)
	h.Write([]byte{0})
	h.Write(kwargBytes)
	hashStr := hex.EncodeToString(h.Sum(nil))

	key := fmt.Sprintf("op:%s:%s", op, hashStr)
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return key, nil
}

// canonicalize produces a deterministic JSON representation of the input.
// Maps are sorted by key to ensure consistent ordering.
func canonicalize(v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}

	// For maps, sort keys for determinism
	switch val := v.(type) {
	case map[string]any:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	default:
		// For other types, use standard JSON encoding
		return json.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	// Sort keys
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Build ordered JSON object
	result := []byte("{")
	for i, k := range keys {
		if i > 0 {
			result = append(result, ',')
		}

		// Key
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		result = append(result, keyBytes...)
		result = append(result, ':')

		// Value (recursively canonicalize)
		valBytes, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, '}')

	return result, nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	result := []byte("[")
	for i, v := range s {
		if i > 0 {
			result = append(result, ',')
		}

		valBytes, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, ']')

	return result, nil
}

// Ensure DefaultKeyer implements Keyer
var _ Keyer = (*DefaultKeyer)(nil)
