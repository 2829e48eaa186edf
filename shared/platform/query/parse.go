package query

import (
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	sharedDomain "github.com/davicafu/devcamper/shared/domain"
)

// Claves de la query string que controlan la forma de la respuesta y nunca filtran.
const (
	ParamSelect = "select"
	ParamSort   = "sort"
	ParamLimit  = "limit"
	ParamPage   = "page"
)

var reserved = map[string]struct{}{
	ParamSelect: {},
	ParamSort:   {},
	ParamLimit:  {},
	ParamPage:   {},
}

var bracketOps = map[string]sharedDomain.Operator{
	"gt":  sharedDomain.OpGt,
	"gte": sharedDomain.OpGte,
	"lt":  sharedDomain.OpLt,
	"lte": sharedDomain.OpLte,
	"in":  sharedDomain.OpIn,
}

// Request es la traducción estructurada de una query string.
type Request struct {
	Conditions []sharedDomain.Criterion
	Select     []string
	Sort       []Sort
	Page       int
	Limit      int
}

// Window devuelve skip/limit de la página pedida.
func (r Request) Window() OffsetPagination {
	return OffsetPagination{Limit: r.Limit, Offset: (r.Page - 1) * r.Limit}
}

// ToConditions permite usar la petición como sharedDomain.Criteria.
func (r Request) ToConditions() []sharedDomain.Criterion {
	return r.Conditions
}

// Parse traduce los parámetros de una petición a filtro, proyección, orden y ventana.
// Nunca falla: los valores de paginación inválidos vuelven a sus valores por defecto.
func Parse(values url.Values) Request {
	req := Request{
		Select: splitFields(values.Get(ParamSelect)),
		Sort:   parseSort(values.Get(ParamSort)),
		Page:   parsePositive(values.Get(ParamPage), DefaultPage),
		Limit:  parsePositive(values.Get(ParamLimit), DefaultLimit),
	}
	req.Page = clampPage(req.Page, req.Limit)

	// Orden estable de claves para que el filtro resultante sea determinista.
	keys := make([]string, 0, len(values))
	for key := range values {
		if _, ok := reserved[key]; ok {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if cond, ok := parseCondition(key, values[key]); ok {
			req.Conditions = append(req.Conditions, cond)
		}
	}
	return req
}

// parseCondition construye el Criterion de una clave `campo` o `campo[op]`.
func parseCondition(key string, raw []string) (sharedDomain.Criterion, bool) {
	if len(raw) == 0 {
		return sharedDomain.Criterion{}, false
	}

	field, op := key, sharedDomain.OpEq
	if open := strings.IndexByte(key, '['); open > 0 && strings.HasSuffix(key, "]") {
		if mapped, ok := bracketOps[key[open+1:len(key)-1]]; ok {
			field, op = key[:open], mapped
		}
	}
	if !validField(field) {
		return sharedDomain.Criterion{}, false
	}

	switch {
	case op == sharedDomain.OpIn:
		var list []interface{}
		for _, v := range raw {
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					list = append(list, candidates(part)...)
				}
			}
		}
		return sharedDomain.Criterion{Field: field, Op: op, Value: list}, true
	case op == sharedDomain.OpEq && len(raw) > 1:
		// campo=a&campo=b equivale a campo[in]=a,b
		list := make([]interface{}, 0, 2*len(raw))
		for _, v := range raw {
			list = append(list, candidates(v)...)
		}
		return sharedDomain.Criterion{Field: field, Op: sharedDomain.OpIn, Value: list}, true
	case op == sharedDomain.OpEq:
		if list := candidates(raw[0]); len(list) > 1 {
			return sharedDomain.Criterion{Field: field, Op: sharedDomain.OpIn, Value: list}, true
		}
		return sharedDomain.Criterion{Field: field, Op: op, Value: raw[0]}, true
	default:
		return sharedDomain.Criterion{Field: field, Op: op, Value: Coerce(raw[0])}, true
	}
}

// candidates devuelve los valores con los que puede coincidir un texto de igualdad.
// Sin conocer el tipo del campo, "10001" tiene que encontrar tanto el número 10001
// como un código postal guardado como texto.
func candidates(raw string) []interface{} {
	typed := Coerce(raw)
	if _, ok := typed.(string); ok {
		return []interface{}{raw}
	}
	return []interface{}{typed, raw}
}

// validField descarta nombres vacíos o que el almacén podría interpretar como operador.
func validField(name string) bool {
	if name == "" || strings.ContainsAny(name, "$\x00") {
		return false
	}
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return false
	}
	return true
}

// Coerce convierte el texto de la query a bool o número cuando la representación es canónica.
// "0123" se queda como texto para no perder ceros a la izquierda (códigos postales).
func Coerce(raw string) interface{} {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil && strconv.FormatInt(i, 10) == raw {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && strings.ContainsRune(raw, '.') &&
		!strings.HasPrefix(raw, ".") && !strings.HasSuffix(raw, ".") {
		return f
	}
	return raw
}

func splitFields(raw string) []string {
	if raw == "" {
		return nil
	}
	var fields []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); validField(part) {
			fields = append(fields, part)
		}
	}
	return fields
}

func parseSort(raw string) []Sort {
	var sorts []Sort
	for _, field := range splitFields(raw) {
		desc := strings.HasPrefix(field, "-")
		field = strings.TrimPrefix(field, "-")
		if validField(field) {
			sorts = append(sorts, Sort{Field: field, Desc: desc})
		}
	}
	if len(sorts) == 0 {
		return []Sort{{Field: DefaultSortField, Desc: true}}
	}
	return sorts
}

// clampPage evita que (page-1)*limit y page*limit desborden int.
func clampPage(page, limit int) int {
	if limit < 1 {
		return page
	}
	if maxPage := math.MaxInt / limit; page > maxPage {
		return maxPage
	}
	return page
}

func parsePositive(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	if n < 1 {
		return 1
	}
	return n
}
