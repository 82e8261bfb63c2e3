package mongodb

import (
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"propcatalog/internal/store"
)

// lookupVar is the pipeline variable bound to the local join key.
const lookupVar = "joinKey"

// renderPipeline translates typed stages into an aggregation pipeline.
func renderPipeline(p store.Pipeline) (mongo.Pipeline, error) {
	if _, ok := p.Last(); !ok {
		return nil, fmt.Errorf("%w: pipeline must end with a projection", store.ErrInvalidPipeline)
	}

	out := make(mongo.Pipeline, 0, len(p)+4)
	for i, st := range p {
		switch st := st.(type) {
		case store.Match:
			m, err := renderMatch(st.Predicates)
			if err != nil {
				return nil, err
			}
			out = append(out, bson.D{{Key: "$match", Value: m}})
		case store.Sort:
			if len(st.Keys) > 0 {
				out = append(out, bson.D{{Key: "$sort", Value: renderSort(st.Keys)}})
			}
		case store.Skip:
			out = append(out, bson.D{{Key: "$skip", Value: st.N}})
		case store.Limit:
			out = append(out, bson.D{{Key: "$limit", Value: st.N}})
		case store.LookupOne:
			sub, err := joinStages(st.ForeignField, st.Where)
			if err != nil {
				return nil, err
			}
			if len(st.OrderBy) > 0 {
				sub = append(sub, bson.D{{Key: "$sort", Value: renderSort(st.OrderBy)}})
			}
			sub = append(sub, bson.D{{Key: "$limit", Value: 1}})
			out = append(out,
				lookup(st.From, st.LocalField, st.As, sub),
				bson.D{{Key: "$unwind", Value: bson.D{
					{Key: "path", Value: "$" + st.As},
					{Key: "preserveNullAndEmptyArrays", Value: true},
				}}},
			)
		case store.LookupMany:
			sub, err := joinStages(st.ForeignField, st.Where)
			if err != nil {
				return nil, err
			}
			if len(st.Fields) > 0 {
				keep := bson.D{}
				for _, f := range st.Fields {
					keep = append(keep, bson.E{Key: f, Value: 1})
				}
				sub = append(sub, bson.D{{Key: "$project", Value: keep}})
			}
			out = append(out, lookup(st.From, st.LocalField, st.As, sub))
		case store.Project:
			if i != len(p)-1 {
				return nil, fmt.Errorf("%w: projection must be the last stage", store.ErrInvalidPipeline)
			}
			proj, err := renderProject(st)
			if err != nil {
				return nil, err
			}
			out = append(out, bson.D{{Key: "$project", Value: proj}})
		default:
			return nil, fmt.Errorf("%w: unsupported stage %T", store.ErrInvalidPipeline, st)
		}
	}
	return out, nil
}

func lookup(from, localField, as string, sub []bson.D) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: from},
		{Key: "let", Value: bson.D{{Key: lookupVar, Value: "$" + localField}}},
		{Key: "pipeline", Value: sub},
		{Key: "as", Value: as},
	}}}
}

// joinStages matches foreign documents on the join key, then on where.
func joinStages(foreignField string, where []store.Predicate) ([]bson.D, error) {
	sub := []bson.D{{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{
		{Key: "$eq", Value: bson.A{"$" + foreignField, "$$" + lookupVar}},
	}}}}}}
	if len(where) == 0 {
		return sub, nil
	}
	m, err := renderMatch(where)
	if err != nil {
		return nil, err
	}
	return append(sub, bson.D{{Key: "$match", Value: m}}), nil
}

// renderMatch groups predicates per field, keeping first-seen field order,
// so that two bounds on one field share a single operator document.
func renderMatch(preds []store.Predicate) (bson.D, error) {
	filter := bson.D{}
	index := make(map[string]int, len(preds))
	for _, p := range preds {
		field, op, err := renderPredicate(p)
		if err != nil {
			return nil, err
		}
		if i, ok := index[field]; ok {
			ops := filter[i].Value.(bson.D)
			filter[i].Value = append(ops, op)
			continue
		}
		index[field] = len(filter)
		filter = append(filter, bson.E{Key: field, Value: bson.D{op}})
	}
	return filter, nil
}

func renderPredicate(p store.Predicate) (string, bson.E, error) {
	switch p := p.(type) {
	case store.Contains:
		// Pattern and flags travel as one regex value so a field can carry
		// other operators next to it.
		return p.Field, bson.E{Key: "$regex", Value: literalPattern(p.Text)}, nil
	case store.Gte:
		return p.Field, bson.E{Key: "$gte", Value: p.Value}, nil
	case store.Lte:
		return p.Field, bson.E{Key: "$lte", Value: p.Value}, nil
	case store.Eq:
		return p.Field, bson.E{Key: "$eq", Value: p.Value}, nil
	case store.Ne:
		return p.Field, bson.E{Key: "$ne", Value: p.Value}, nil
	default:
		return "", bson.E{}, fmt.Errorf("%w: unsupported predicate %T", store.ErrInvalidPipeline, p)
	}
}

func renderSort(keys []store.SortKey) bson.D {
	d := make(bson.D, 0, len(keys))
	for _, k := range keys {
		dir := 1
		if k.Desc {
			dir = -1
		}
		d = append(d, bson.E{Key: k.Field, Value: dir})
	}
	return d
}

func renderProject(p store.Project) (bson.D, error) {
	d := bson.D{{Key: "_id", Value: 0}}
	for _, f := range p.Fields {
		switch e := f.Expr.(type) {
		case store.Path:
			d = append(d, bson.E{Key: f.Name, Value: "$" + string(e)})
		case store.Count:
			d = append(d, bson.E{Key: f.Name, Value: bson.D{{Key: "$size", Value: bson.D{
				{Key: "$ifNull", Value: bson.A{"$" + string(e), bson.A{}}},
			}}}})
		case store.Pluck:
			d = append(d, bson.E{Key: f.Name, Value: bson.D{{Key: "$map", Value: bson.D{
				{Key: "input", Value: "$" + e.Path},
				{Key: "as", Value: "el"},
				{Key: "in", Value: "$$el." + e.Field},
			}}}})
		default:
			return nil, fmt.Errorf("%w: unsupported expression %T", store.ErrInvalidPipeline, e)
		}
	}
	return d, nil
}

// literalPattern quotes every metacharacter of text so the store matches it
// as a plain case-insensitive substring.
func literalPattern(text string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(text), Options: "i"}
}
