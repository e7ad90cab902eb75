// internal/app/system/search/search.go
package search

import (
	"regexp"
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NameFilter builds a prefix filter against a folded name column
// (full_name_ci) for the given user query. The query is folded the same
// way the column is written, so "García" finds "garcia", and
// regex-escaped so user input cannot widen the match. Returns nil for a
// blank query; callers skip the clause entirely then.
func NameFilter(q string) bson.M {
	folded := text.Fold(strings.TrimSpace(q))
	if folded == "" {
		return nil
	}
	return bson.M{"full_name_ci": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(folded)}}
}
