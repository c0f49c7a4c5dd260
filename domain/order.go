package domain

import (
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var (
	collatorMu sync.Mutex
	collator   = collate.New(language.Und, collate.Loose)
)

// NameLess is the locale-aware display ordering for contact names.
// collate.Collator buffers internally, hence the lock.
func NameLess(a, b string) bool {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	return collator.CompareString(a, b) < 0
}
