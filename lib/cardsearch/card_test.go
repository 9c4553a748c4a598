package cardsearch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCardAccessors(t *testing.T) {
	var card Card
	err := json.Unmarshal([]byte(`{
		"id": "pokemon-base-set-charizard",
		"name": "Charizard",
		"game": "Pokemon",
		"set": "Base Set",
		"number": "4/102",
		"rarity": "Holo Rare",
		"variants": [
			{"condition": "Near Mint", "printing": "Holofoil", "price": 412.5},
			{"condition": "Lightly Played", "printing": "Holofoil", "price": 310.99},
			{"condition": "Damaged", "printing": "Holofoil"},
			"garbage"
		]
	}`), &card)
	require.NoError(t, err)

	require.Equal(t, "pokemon-base-set-charizard", card.ID())
	require.Equal(t, "Charizard", card.Name())
	require.Equal(t, "Pokemon", card.Game())
	require.Equal(t, "Base Set", card.Set())
	require.Equal(t, "4/102", card.Number())
	require.Equal(t, "Holo Rare", card.Rarity())

	price, ok := card.LowestPrice()
	require.True(t, ok)
	require.Equal(t, 310.99, price)
}

func TestCardMissingFields(t *testing.T) {
	card := Card(`{"name":12,"variants":[{"condition":"NM"}]}`)
	require.Equal(t, "", card.Name())
	require.Equal(t, "", card.Set())
	_, ok := card.LowestPrice()
	require.False(t, ok)

	_, ok = Card(nil).LowestPrice()
	require.False(t, ok)
}

func TestCardKeepsRawRecord(t *testing.T) {
	raw := `{"name":"Pikachu & Zekrom <GX>","id":"sm-team-up-33"}`

	var cards []Card
	require.NoError(t, json.Unmarshal([]byte(`[`+raw+`, null]`), &cards))
	require.Equal(t, []Card{Card(raw), nil}, cards)

	encoded, err := json.Marshal(cards[0])
	require.NoError(t, err)
	require.Equal(t, `{"name":"Pikachu \u0026 Zekrom \u003cGX\u003e","id":"sm-team-up-33"}`, string(encoded))

	require.Error(t, json.Unmarshal([]byte(`[1]`), &cards))
}
