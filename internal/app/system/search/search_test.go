// internal/app/system/search/search_test.go
package search

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNameFilter(t *testing.T) {
	t.Run("blank query yields no filter", func(t *testing.T) {
		if got := NameFilter("   "); got != nil {
			t.Errorf("NameFilter(blank) = %v, want nil", got)
		}
	})

	t.Run("folds and anchors", func(t *testing.T) {
		got := NameFilter("  García ")
		re, ok := got["full_name_ci"].(primitive.Regex)
		if !ok {
			t.Fatalf("filter = %v", got)
		}
		if re.Pattern != "^garcia" {
			t.Errorf("Pattern = %q, want ^garcia", re.Pattern)
		}
	})

	t.Run("escapes regex metacharacters", func(t *testing.T) {
		got := NameFilter("a.b*")
		re := got["full_name_ci"].(primitive.Regex)
		if re.Pattern != `^a\.b\*` {
			t.Errorf("Pattern = %q, want metacharacters escaped", re.Pattern)
		}
	})
}
