package cardsearch

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
)

// Card is a card record as returned by the API. No schema is enforced, the
// record's bytes are kept as received so key order and escaping survive
// re-encoding.
type Card json.RawMessage

var errCardNotObject = errors.New("card is not a json object")

func (c Card) MarshalJSON() ([]byte, error) {
	if len(c) == 0 {
		return []byte("null"), nil
	}
	return c, nil
}

func (c *Card) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errCardNotObject
	}
	*c = append((*c)[:0], trimmed...)
	return nil
}

func (c Card) fields() map[string]any {
	var fields map[string]any
	if len(c) > 0 {
		_ = json.Unmarshal(c, &fields)
	}
	return fields
}

func (c Card) str(key string) string {
	v, _ := c.fields()[key].(string)
	return v
}

func (c Card) ID() string     { return c.str("id") }
func (c Card) Name() string   { return c.str("name") }
func (c Card) Game() string   { return c.str("game") }
func (c Card) Set() string    { return c.str("set") }
func (c Card) Number() string { return c.str("number") }
func (c Card) Rarity() string { return c.str("rarity") }

// LowestPrice returns the lowest price among the card's variants, false if
// the card has no priced variants.
func (c Card) LowestPrice() (float64, bool) {
	variants, ok := c.fields()["variants"].([]any)
	if !ok {
		return 0, false
	}

	lowest := math.Inf(1)
	for _, v := range variants {
		variant, ok := v.(map[string]any)
		if !ok {
			continue
		}
		price, ok := variant["price"].(float64)
		if !ok {
			continue
		}
		lowest = min(lowest, price)
	}
	if math.IsInf(lowest, 1) {
		return 0, false
	}
	return lowest, true
}
