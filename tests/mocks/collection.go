package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	sharedDomain "github.com/davicafu/devcamper/shared/domain"
	sharedQuery "github.com/davicafu/devcamper/shared/platform/query"
)

// MemStore agrupa colecciones en memoria para poder resolver Populate entre ellas.
type MemStore struct {
	mu          sync.RWMutex
	collections map[string][]sharedQuery.Document
}

func NewMemStore() *MemStore {
	return &MemStore{collections: make(map[string][]sharedQuery.Document)}
}

// Insert añade documentos a una colección.
func (s *MemStore) Insert(name string, docs ...sharedQuery.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[name] = append(s.collections[name], docs...)
}

// Replace sustituye el contenido completo de una colección.
func (s *MemStore) Replace(name string, docs []sharedQuery.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[name] = docs
}

// Collection devuelve una vista consultable de la colección.
func (s *MemStore) Collection(name string) *MemCollection {
	return &MemCollection{store: s, name: name}
}

// MemCollection implementa sharedQuery.Collection con semántica parecida a MongoDB:
// igualdad sobre arrays compara elementos y los números se comparan como float64.
type MemCollection struct {
	store *MemStore
	name  string

	// FindErr / CountErr permiten simular fallos del almacén.
	FindErr  error
	CountErr error

	mu         sync.Mutex
	FindCalls  []sharedQuery.FindSpec
	CountCalls [][]sharedDomain.Criterion
}

var _ sharedQuery.Collection = (*MemCollection)(nil)

func (c *MemCollection) Find(ctx context.Context, spec sharedQuery.FindSpec) ([]sharedQuery.Document, error) {
	c.mu.Lock()
	c.FindCalls = append(c.FindCalls, spec)
	c.mu.Unlock()
	if c.FindErr != nil {
		return nil, c.FindErr
	}

	matched := c.match(spec.Conditions)

	sort.SliceStable(matched, func(i, j int) bool {
		for _, s := range spec.Sort {
			cmp := compareValues(matched[i][s.Field], matched[j][s.Field])
			if cmp == 0 {
				continue
			}
			if s.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})

	if spec.Skip >= len(matched) {
		matched = nil
	} else {
		matched = matched[spec.Skip:]
	}
	if spec.Limit > 0 && spec.Limit < len(matched) {
		matched = matched[:spec.Limit]
	}

	out := make([]sharedQuery.Document, 0, len(matched))
	for _, doc := range matched {
		out = append(out, sharedQuery.Project(doc, spec.Select))
	}

	for _, p := range spec.Populate {
		keys := sharedQuery.LocalKeys(out, p)
		related := c.store.Collection(p.From).match([]sharedDomain.Criterion{
			{Field: p.Foreign(), Op: sharedDomain.OpIn, Value: keys},
		})
		for i, r := range related {
			related[i] = sharedQuery.Project(r, withField(p.Select, p.Foreign()))
		}
		sharedQuery.Attach(out, p, related)
	}
	return out, nil
}

func (c *MemCollection) Count(ctx context.Context, conds []sharedDomain.Criterion) (int64, error) {
	c.mu.Lock()
	c.CountCalls = append(c.CountCalls, conds)
	c.mu.Unlock()
	if c.CountErr != nil {
		return 0, c.CountErr
	}
	return int64(len(c.match(conds))), nil
}

func (c *MemCollection) match(conds []sharedDomain.Criterion) []sharedQuery.Document {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	var out []sharedQuery.Document
	for _, doc := range c.store.collections[c.name] {
		if matchDocument(doc, conds) {
			out = append(out, doc)
		}
	}
	return out
}

func withField(fields []string, extra string) []string {
	if len(fields) == 0 {
		return nil
	}
	return append(append([]string{}, fields...), extra)
}

// --- Lógica de filtrado y ordenamiento del mock ---

func matchDocument(doc sharedQuery.Document, conds []sharedDomain.Criterion) bool {
	for _, cond := range conds {
		v, ok := doc[cond.Field]
		if !ok {
			return false
		}
		if !matchValue(v, cond) {
			return false
		}
	}
	return true
}

func matchValue(v interface{}, cond sharedDomain.Criterion) bool {
	// Igual que MongoDB: un campo array coincide si algún elemento coincide.
	switch arr := v.(type) {
	case []interface{}:
		for _, el := range arr {
			if matchValue(el, cond) {
				return true
			}
		}
		return false
	case []string:
		for _, el := range arr {
			if matchValue(el, cond) {
				return true
			}
		}
		return false
	}

	switch cond.Op {
	case sharedDomain.OpIn:
		list, _ := cond.Value.([]interface{})
		for _, want := range list {
			if compareValues(v, want) == 0 {
				return true
			}
		}
		return false
	case sharedDomain.OpGt:
		return sameKind(v, cond.Value) && compareValues(v, cond.Value) > 0
	case sharedDomain.OpGte:
		return sameKind(v, cond.Value) && compareValues(v, cond.Value) >= 0
	case sharedDomain.OpLt:
		return sameKind(v, cond.Value) && compareValues(v, cond.Value) < 0
	case sharedDomain.OpLte:
		return sameKind(v, cond.Value) && compareValues(v, cond.Value) <= 0
	default:
		return sameKind(v, cond.Value) && compareValues(v, cond.Value) == 0
	}
}

func sameKind(a, b interface{}) bool {
	_, an := toFloat(a)
	_, bn := toFloat(b)
	if an || bn {
		return an && bn
	}
	_, at := a.(time.Time)
	_, bt := b.(time.Time)
	if at || bt {
		return at && bt
	}
	return true
}

// compareValues ordena nil < números < texto; los tiempos se comparan entre sí.
func compareValues(a, b interface{}) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
		return -1
	}
	if _, ok := toFloat(b); ok {
		return 1
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
