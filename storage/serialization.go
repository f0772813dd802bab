package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/LukasKalbertodt/grakawa/core"
)

type indexDocument struct {
	ProductIDs []core.ProductID `json:"product_ids"`
}

type indexDocumentIn struct {
	ProductIDs *[]core.ProductID `json:"product_ids"`
}

// EncodeIndex writes the index document for ids as indented JSON.
// ids must already be sorted and free of duplicates.
func EncodeIndex(w io.Writer, ids []core.ProductID) error {
	if ids == nil {
		ids = []core.ProductID{}
	}
	return encodeJSON(w, indexDocument{ProductIDs: ids})
}

// DecodeIndex reads an index document and returns its IDs in ascending order.
// Unknown fields, invalid or duplicate IDs and trailing data are rejected.
func DecodeIndex(r io.Reader) ([]core.ProductID, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var doc indexDocumentIn
	if err := dec.Decode(&doc); err != nil {
		return nil, decodeError(err)
	}
	if err := expectEOF(dec); err != nil {
		return nil, err
	}
	if doc.ProductIDs == nil {
		return nil, fmt.Errorf("%w: missing field \"product_ids\"", ErrSerializationFailed)
	}

	ids := slices.Clone(*doc.ProductIDs)
	slices.Sort(ids)
	for i, id := range ids {
		if err := core.ValidateProductID(id); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}
		if i > 0 && ids[i-1] == id {
			return nil, fmt.Errorf("%w: duplicate product id %d", ErrSerializationFailed, id)
		}
	}
	return ids, nil
}

// EncodePrices writes a price series as an indented JSON object keyed by
// date, in ascending date order.
func EncodePrices(w io.Writer, prices core.Prices) error {
	if prices == nil {
		prices = core.Prices{}
	}
	return encodeJSON(w, prices)
}

// DecodePrices reads a price series object.
// Keys must be 2006-01-02 dates and appear at most once; values must be
// money strings.
func DecodePrices(r io.Reader) (core.Prices, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, decodeError(err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object, found %v", ErrSerializationFailed, tok)
	}

	prices := core.Prices{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, decodeError(err)
		}
		key, _ := tok.(string)
		var date core.Date
		if err := date.UnmarshalText([]byte(key)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}
		if _, dup := prices[date]; dup {
			return nil, fmt.Errorf("%w: duplicate date %s", ErrSerializationFailed, date)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: price for %s: %w", ErrSerializationFailed, date, err)
		}
		var text string
		if len(raw) == 0 || raw[0] != '"' || json.Unmarshal(raw, &text) != nil {
			return nil, fmt.Errorf("%w: price for %s must be a string, found %s", ErrSerializationFailed, date, raw)
		}
		var price core.Money
		if err := price.UnmarshalText([]byte(text)); err != nil {
			return nil, fmt.Errorf("%w: price for %s: %w", ErrSerializationFailed, date, err)
		}
		prices[date] = price
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, decodeError(err)
	}
	if err := expectEOF(dec); err != nil {
		return nil, err
	}
	return prices, nil
}

func encodeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	data = append(data, '\n')
	_, err = io.Copy(w, bytes.NewReader(data))
	return err
}

func expectEOF(dec *json.Decoder) error {
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected data after document", ErrSerializationFailed)
	}
	return nil
}

func decodeError(err error) error {
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: empty document", ErrSerializationFailed)
	}
	return fmt.Errorf("%w: %w", ErrSerializationFailed, err)
}
