package cardsearch

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	KeyText      = "q"
	KeyGame      = "game"
	KeySet       = "set"
	KeyCondition = "condition"
)

// SearchCriteria is the filter state supplied by the user for one search.
type SearchCriteria struct {
	Text       string
	Game       string
	Set        string
	Conditions []string
}

type Param struct {
	Key   string
	Value string
}

// Descriptor is an ordered list of query parameters, its encoding is
// stable for a given set of criteria.
type Descriptor []Param

// Build turns criteria into a query descriptor. It returns false when there is
// nothing to search for (the text is empty), in which case no request should
// be made.
//
// Parameters are always ordered q, game, set, condition.
func Build(criteria SearchCriteria) (Descriptor, bool) {
	if criteria.Text == "" {
		return nil, false
	}

	query := Descriptor{{Key: KeyText, Value: criteria.Text}}
	if criteria.Game != "" {
		query = append(query, Param{Key: KeyGame, Value: criteria.Game})
	}
	if criteria.Set != "" {
		query = append(query, Param{Key: KeySet, Value: criteria.Set})
	}

	var conditions []string
	for _, c := range criteria.Conditions {
		if c != "" {
			conditions = append(conditions, c)
		}
	}
	if len(conditions) > 0 {
		query = append(query, Param{Key: KeyCondition, Value: strings.Join(conditions, ",")})
	}

	return query, true
}

// Encode serializes the descriptor as an application/x-www-form-urlencoded
// query string, keeping parameter order.
func (d Descriptor) Encode() string {
	var out strings.Builder
	for i, p := range d {
		if i > 0 {
			out.WriteByte('&')
		}
		out.WriteString(url.QueryEscape(p.Key))
		out.WriteByte('=')
		out.WriteString(url.QueryEscape(p.Value))
	}
	return out.String()
}

func (d Descriptor) String() string {
	return d.Encode()
}

// Get returns the value of the first parameter with the given key.
func (d Descriptor) Get(key string) (string, bool) {
	for _, p := range d {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Criteria recovers the search criteria a descriptor was built from.
// For q, game and set the first occurrence wins, conditions accumulate.
// Unknown keys are ignored.
func (d Descriptor) Criteria() SearchCriteria {
	var criteria SearchCriteria
	seen := map[string]bool{}
	for _, p := range d {
		switch p.Key {
		case KeyText, KeyGame, KeySet:
			if seen[p.Key] {
				continue
			}
			seen[p.Key] = true
			switch p.Key {
			case KeyText:
				criteria.Text = p.Value
			case KeyGame:
				criteria.Game = p.Value
			case KeySet:
				criteria.Set = p.Value
			}
		case KeyCondition:
			for _, c := range strings.Split(p.Value, ",") {
				if c != "" {
					criteria.Conditions = append(criteria.Conditions, c)
				}
			}
		}
	}
	return criteria
}

// ParseDescriptor decodes a raw query string into a descriptor, unlike
// url.ParseQuery it keeps the order the parameters came in.
func ParseDescriptor(raw string) (Descriptor, error) {
	raw = strings.TrimPrefix(raw, "?")

	var out Descriptor
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("unescape key %q: %w", rawKey, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("unescape value of %q: %w", key, err)
		}
		out = append(out, Param{Key: key, Value: value})
	}
	return out, nil
}
