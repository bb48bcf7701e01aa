package object

import (
	"bytes"
	"strings"
)

type HashPair struct {
	Key   Object
	Value Object
}

// Hash is an insertion-ordered map. Updating an existing key keeps its
// position; deleting removes it positionally; re-inserting after a delete
// appends at the end. Iteration, keys() and entries() all follow order.
// Held by pointer everywhere, like Array.
type Hash struct {
	pairs map[HashKey]HashPair
	order []HashKey
}

func NewHash() *Hash {
	return &Hash{pairs: make(map[HashKey]HashPair)}
}

func (h *Hash) Type() ObjectType { return HASH_OBJ }
func (h *Hash) Inspect() string {
	var out bytes.Buffer

	pairs := []string{}
	for _, key := range h.order {
		pair := h.pairs[key]
		pairs = append(pairs, pair.Key.Inspect()+": "+pair.Value.Inspect())
	}

	out.WriteString("{")
	out.WriteString(strings.Join(pairs, ", "))
	out.WriteString("}")

	return out.String()
}

func (h *Hash) Len() int { return len(h.order) }

// Set inserts or updates. Returns an *Error for unhashable keys with the
// message shape the language surface documents.
func (h *Hash) Set(key, value Object) *Error {
	hk, ok := HashKeyFromObject(key)
	if !ok {
		return NewError("%s cannot be used as a hash key", key.Type())
	}
	h.SetKey(hk, HashPair{Key: key, Value: value})
	return nil
}

func (h *Hash) SetKey(hk HashKey, pair HashPair) {
	if h.pairs == nil {
		h.pairs = make(map[HashKey]HashPair)
	}
	if _, exists := h.pairs[hk]; !exists {
		h.order = append(h.order, hk)
	}
	h.pairs[hk] = pair
}

func (h *Hash) Get(key Object) (Object, bool) {
	hk, ok := HashKeyFromObject(key)
	if !ok {
		return nil, false
	}
	return h.GetKey(hk)
}

func (h *Hash) GetKey(hk HashKey) (Object, bool) {
	pair, ok := h.pairs[hk]
	if !ok {
		return nil, false
	}
	return pair.Value, true
}

// Delete removes the key and its slot in the ordering. Reports whether the
// key was present.
func (h *Hash) Delete(key Object) bool {
	hk, ok := HashKeyFromObject(key)
	if !ok {
		return false
	}
	if _, exists := h.pairs[hk]; !exists {
		return false
	}
	delete(h.pairs, hk)
	for i, k := range h.order {
		if k == hk {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the HashKeys in insertion order.
func (h *Hash) Keys() []HashKey {
	keys := make([]HashKey, len(h.order))
	copy(keys, h.order)
	return keys
}

// Pairs returns key/value pairs in insertion order.
func (h *Hash) Pairs() []HashPair {
	pairs := make([]HashPair, 0, len(h.order))
	for _, key := range h.order {
		pairs = append(pairs, h.pairs[key])
	}
	return pairs
}
