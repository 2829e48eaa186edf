package mongodb

import (
	"go.mongodb.org/mongo-driver/bson"

	sharedDomain "github.com/davicafu/devcamper/shared/domain"
	sharedQuery "github.com/davicafu/devcamper/shared/platform/query"
)

// ToFilter construye el filtro BSON directamente a partir de los Criterion.
// Los operadores sobre un mismo campo se agrupan: price[gte]=1&price[lt]=9 -> {price: {$gte:1, $lt:9}}.
func ToFilter(conds []sharedDomain.Criterion) bson.M {
	filter := bson.M{}
	for _, c := range conds {
		op, value := mongoOperator(c)
		if existing, ok := filter[c.Field].(bson.M); ok {
			existing[op] = value
			continue
		}
		filter[c.Field] = bson.M{op: value}
	}
	return filter
}

// CriteriaFilter adapta cualquier sharedDomain.Criteria.
func CriteriaFilter(criteria sharedDomain.Criteria) bson.M {
	if criteria == nil {
		return bson.M{}
	}
	return ToFilter(criteria.ToConditions())
}

func mongoOperator(c sharedDomain.Criterion) (string, interface{}) {
	// Mapeo de operadores genéricos a operadores de MongoDB
	switch c.Op {
	case sharedDomain.OpGt:
		return "$gt", c.Value
	case sharedDomain.OpGte:
		return "$gte", c.Value
	case sharedDomain.OpLt:
		return "$lt", c.Value
	case sharedDomain.OpLte:
		return "$lte", c.Value
	case sharedDomain.OpIn:
		list, _ := c.Value.([]interface{})
		return "$in", bson.A(append([]interface{}{}, list...))
	default:
		return "$eq", c.Value
	}
}

// projection traduce la lista de campos a {campo: 1}; _id lo incluye Mongo siempre.
func projection(fields []string) bson.D {
	if len(fields) == 0 {
		return nil
	}
	proj := make(bson.D, 0, len(fields))
	for _, f := range fields {
		proj = append(proj, bson.E{Key: f, Value: 1})
	}
	return proj
}

// sortSpec añade _id como desempate para que skip/limit sea estable entre páginas.
func sortSpec(sorts []sharedQuery.Sort) bson.D {
	spec := make(bson.D, 0, len(sorts)+1)
	hasID := false
	for _, s := range sorts {
		dir := 1
		if s.Desc {
			dir = -1
		}
		if s.Field == sharedQuery.IDField {
			hasID = true
		}
		spec = append(spec, bson.E{Key: s.Field, Value: dir})
	}
	if !hasID {
		spec = append(spec, bson.E{Key: sharedQuery.IDField, Value: 1})
	}
	return spec
}
