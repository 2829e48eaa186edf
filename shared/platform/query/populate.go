package query

import "fmt"

// LocalKeys devuelve los valores distintos del campo local que hay que resolver.
func LocalKeys(docs []Document, p Populate) []interface{} {
	seen := make(map[string]struct{}, len(docs))
	keys := make([]interface{}, 0, len(docs))
	for _, doc := range docs {
		v, ok := doc[p.Local()]
		if !ok || v == nil {
			continue
		}
		k := keyOf(v)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, v)
	}
	return keys
}

// Attach incrusta en cada documento los relacionados que le corresponden según p.
// Con Many=true el campo queda como lista (vacía si no hay coincidencias).
func Attach(docs []Document, p Populate, related []Document) {
	byKey := make(map[string][]Document, len(related))
	for _, r := range related {
		k := keyOf(r[p.Foreign()])
		byKey[k] = append(byKey[k], r)
	}

	for _, doc := range docs {
		local, ok := doc[p.Local()]
		if !ok {
			// la proyección excluyó la relación: no se incrusta nada
			continue
		}
		matches := byKey[keyOf(local)]
		if p.Many {
			if matches == nil {
				matches = []Document{}
			}
			doc[p.Path] = matches
			continue
		}
		if len(matches) > 0 {
			doc[p.Path] = matches[0]
		} else {
			doc[p.Path] = nil
		}
	}
}

// Project conserva el campo de identidad y los campos pedidos. Sin campos devuelve una copia.
func Project(doc Document, fields []string) Document {
	out := make(Document, len(fields)+1)
	if len(fields) == 0 {
		for k, v := range doc {
			out[k] = v
		}
		return out
	}
	if id, ok := doc[IDField]; ok {
		out[IDField] = id
	}
	for _, f := range fields {
		if v, ok := doc[f]; ok {
			out[f] = v
		}
	}
	return out
}

func keyOf(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
