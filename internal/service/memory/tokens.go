package memory

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
)

// CountTokens estimates tokens with the cl100k_base encoding. When the
// encoding cannot load it falls back to a chars/4 approximation; either way
// every budget decision in this package uses this one function.
func CountTokens(text string) int {
	tkOnce.Do(func() {
		t, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			tk = t
		}
	})

	if tk == nil {
		return (len(text) + 3) / 4
	}
	return len(tk.Encode(text, nil, nil))
}
