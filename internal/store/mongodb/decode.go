package mongodb

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"

	"propcatalog/internal/store"
)

// decodeRow converts one projected document into a typed Row. Fields the
// document lacks stay out of the row, so Row.Get reports them Absent.
func decodeRow(doc bson.Raw, proj store.Project) (store.Row, error) {
	row := make(store.Row, len(proj.Fields))
	for _, f := range proj.Fields {
		rv, err := doc.LookupErr(f.Name)
		if errors.Is(err, bsoncore.ErrElementNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		v, err := decodeValue(f, rv)
		if err != nil {
			return nil, err
		}
		row[f.Name] = v
	}
	return row, nil
}

func decodeValue(f store.Field, rv bson.RawValue) (store.Value, error) {
	v := store.Value{Kind: f.Kind, Presence: store.Present}
	if rv.Type == bsontype.Null || rv.Type == bsontype.Undefined {
		v.Presence = store.Null
		return v, nil
	}

	ok := false
	switch f.Kind {
	case store.KindString:
		v.Str, ok = rv.StringValueOK()
	case store.KindInt:
		v.Int, ok = rv.AsInt64OK()
	case store.KindDecimal:
		var err error
		v.Dec, ok, err = decodeDecimalValue(rv)
		if err != nil {
			return v, fmt.Errorf("field %s: %w", f.Name, err)
		}
	case store.KindTime:
		var ms int64
		if ms, ok = rv.DateTimeOK(); ok {
			v.Time = time.UnixMilli(ms).UTC()
		}
	case store.KindBool:
		v.Bool, ok = rv.BooleanOK()
	case store.KindStringList:
		var arr bson.Raw
		if arr, ok = rv.ArrayOK(); ok {
			values, err := arr.Values()
			if err != nil {
				return v, fmt.Errorf("field %s: %w", f.Name, err)
			}
			v.List = make([]string, 0, len(values))
			for _, el := range values {
				if s, isStr := el.StringValueOK(); isStr {
					v.List = append(v.List, s)
				}
			}
		}
	}
	if !ok {
		return v, fmt.Errorf("field %s: cannot read %s as %s", f.Name, rv.Type, f.Kind)
	}
	return v, nil
}

func decodeDecimalValue(rv bson.RawValue) (decimal.Decimal, bool, error) {
	switch rv.Type {
	case bsontype.Decimal128:
		d, err := fromDecimal128(rv.Decimal128())
		return d, err == nil, err
	case bsontype.Int32:
		return decimal.NewFromInt32(rv.Int32()), true, nil
	case bsontype.Int64:
		return decimal.NewFromInt(rv.Int64()), true, nil
	case bsontype.Double:
		return decimal.NewFromFloat(rv.Double()), true, nil
	case bsontype.String:
		d, err := decimal.NewFromString(rv.StringValue())
		if err != nil {
			return decimal.Decimal{}, false, nil
		}
		return d, true, nil
	default:
		return decimal.Decimal{}, false, nil
	}
}
