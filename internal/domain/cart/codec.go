package cart

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// Persisted layout: a JSON array of {"name": string, "price": number,
// "quantity": integer}. There is no schema version; the decoder validates
// the shape field by field instead.

// encodeItems serializes items into the persisted layout.
func encodeItems(items []LineItem) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, item := range items {
		e.ObjStart()
		e.FieldStart("name")
		e.Str(item.Name)
		e.FieldStart("price")
		e.RawStr(item.UnitPrice.String())
		e.FieldStart("quantity")
		e.Int(item.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.Bytes()
}

// decodeItems parses the persisted layout. It returns ok=false for any shape
// mismatch: not an array, elements that are not objects, missing or
// wrongly-typed fields, negative prices, or non-positive quantities. Callers
// treat ok=false as an empty cart.
func decodeItems(data []byte) (items []LineItem, ok bool) {
	d := jx.DecodeBytes(data)
	if d.Next() != jx.Array {
		return nil, false
	}

	err := d.Arr(func(d *jx.Decoder) error {
		item, err := decodeItem(d)
		if err != nil {
			return err
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, false
	}
	return items, true
}

func decodeItem(d *jx.Decoder) (LineItem, error) {
	if d.Next() != jx.Object {
		return LineItem{}, errors.New("element is not an object")
	}

	var item LineItem
	var hasName, hasPrice, hasQty bool
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "name":
			if d.Next() != jx.String {
				return errors.New("name is not a string")
			}
			s, err := d.Str()
			if err != nil {
				return err
			}
			item.Name = s
			hasName = true
		case "price":
			price, err := decodeAmount(d)
			if err != nil {
				return errors.Wrap(err, "price")
			}
			if price.IsNegative() {
				return errors.New("negative price")
			}
			item.UnitPrice = price
			hasPrice = true
		case "quantity":
			if d.Next() != jx.Number {
				return errors.New("quantity is not a number")
			}
			n, err := d.Num()
			if err != nil {
				return err
			}
			qty, err := n.Int64()
			if err != nil {
				return errors.Wrap(err, "quantity")
			}
			if qty < 1 {
				return errors.New("quantity below 1")
			}
			item.Quantity = int(qty)
			hasQty = true
		default:
			return d.Skip()
		}
		return nil
	})
	if err != nil {
		return LineItem{}, err
	}
	if !hasName || !hasPrice || !hasQty {
		return LineItem{}, errors.New("missing field")
	}
	return item, nil
}

func decodeAmount(d *jx.Decoder) (decimal.Decimal, error) {
	if d.Next() != jx.Number {
		return decimal.Decimal{}, errors.New("not a number")
	}
	n, err := d.Num()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(n.String())
}
