package client

import (
	"math"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Positions inside a ranking row: [sort index, rank, display name, identifier, ...].
const (
	rankingNameIndex       = 2
	rankingIdentifierIndex = 3
)

// Match is the best search hit for a name query.
type Match struct {
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
}

// nextIndex extracts next_index from a search response. A missing or null
// value means no lifter matched.
func nextIndex(body []byte) (index int64, found bool, err error) {
	if !gjson.ValidBytes(body) {
		err = errors.Wrap(ErrDecode, "search response is not valid JSON")
		return index, found, err
	}

	res := gjson.GetBytes(body, "next_index")
	if !res.Exists() || res.Type == gjson.Null {
		return index, found, err
	}

	if res.Type != gjson.Number || res.Num < 0 || res.Num != math.Trunc(res.Num) {
		err = errors.Wrapf(ErrDecode, "next_index is not a non-negative integer: %s", res.Raw)
		return index, found, err
	}

	index = res.Int()
	found = true
	return index, found, err
}

// rankingEntry extracts the (name, identifier) pair from the first ranking row.
// Any other shape means the upstream API has changed.
func rankingEntry(body []byte) (match Match, err error) {
	if !gjson.ValidBytes(body) {
		err = errors.Wrap(ErrDecode, "ranking response is not valid JSON")
		return match, err
	}

	row := gjson.GetBytes(body, "rows.0")
	if !row.IsArray() {
		err = errors.Wrap(ErrDecode, "ranking response has no rows[0] array; upstream API has probably changed")
		return match, err
	}

	items := row.Array()
	if len(items) <= rankingIdentifierIndex {
		err = errors.Wrapf(ErrDecode, "ranking row has %d items, want at least %d", len(items), rankingIdentifierIndex+1)
		return match, err
	}

	name := items[rankingNameIndex]
	identifier := items[rankingIdentifierIndex]
	if name.Type != gjson.String || identifier.Type != gjson.String || identifier.Str == "" {
		err = errors.Wrapf(ErrDecode, "ranking row name/identifier are not strings: %s, %s", name.Raw, identifier.Raw)
		return match, err
	}

	match = Match{Name: name.Str, Identifier: identifier.Str}
	return match, err
}
