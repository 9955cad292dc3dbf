package parser

import (
	"sync"
)

// StringIntern provides thread-safe string interning. Camera logs repeat the
// same handful of normalized events and device IDs across every line, so
// interning lets all records share one backing string per distinct value.
type StringIntern struct {
	mu   sync.RWMutex
	pool map[string]string
}

// NewStringIntern creates a new string interner.
func NewStringIntern() *StringIntern {
	return &StringIntern{
		pool: make(map[string]string, 256),
	}
}

// MaxInternPoolSize caps the pool so a pathological file with endless unique
// event texts cannot grow it without bound.
const MaxInternPoolSize = 100000

// Intern returns the canonical version of the string. Once the pool is full,
// strings pass through unpooled.
func (si *StringIntern) Intern(s string) string {
	si.mu.RLock()
	if pooled, ok := si.pool[s]; ok {
		si.mu.RUnlock()
		return pooled
	}
	if len(si.pool) >= MaxInternPoolSize {
		si.mu.RUnlock()
		return s
	}
	si.mu.RUnlock()

	si.mu.Lock()
	defer si.mu.Unlock()
	if pooled, ok := si.pool[s]; ok {
		return pooled
	}
	if len(si.pool) >= MaxInternPoolSize {
		return s
	}
	si.pool[s] = s
	return s
}

// Len returns the number of unique strings in the pool.
func (si *StringIntern) Len() int {
	si.mu.RLock()
	defer si.mu.RUnlock()
	return len(si.pool)
}

// Clear removes all interned strings.
func (si *StringIntern) Clear() {
	si.mu.Lock()
	defer si.mu.Unlock()
	si.pool = make(map[string]string, 256)
}

// Global intern pool shared across parsers, so multi-file sessions
// deduplicate device IDs and event kinds across files.
var globalIntern = NewStringIntern()

// GetGlobalIntern returns the global string interner.
func GetGlobalIntern() *StringIntern {
	return globalIntern
}

// ResetGlobalIntern clears the global intern pool.
// Call this between major operations to free memory.
func ResetGlobalIntern() {
	globalIntern.Clear()
}
