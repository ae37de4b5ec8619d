package idgen

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	pattern := regexp.MustCompile(`^RCP[A-Z0-9]{12}$`)

	t.Run("格式正确", func(t *testing.T) {
		id := New(PrefixRecipient)
		assert.Regexp(t, pattern, id)
	})

	t.Run("不重复", func(t *testing.T) {
		seen := make(map[string]struct{}, 1000)
		for i := 0; i < 1000; i++ {
			id := Random{}.New(PrefixMail)
			_, dup := seen[id]
			assert.False(t, dup, "duplicate id %s", id)
			seen[id] = struct{}{}
		}
	})
}
