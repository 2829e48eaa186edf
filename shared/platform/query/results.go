package query

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/sync/errgroup"
)

// PageRef apunta a una página vecina.
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination solo contiene las páginas vecinas que existen.
type Pagination struct {
	Prev *PageRef `json:"prev,omitempty"`
	Next *PageRef `json:"next,omitempty"`
}

// Result es el sobre estándar de los listados.
type Result struct {
	Success    bool       `json:"success"`
	Count      int        `json:"count"`
	Total      int64      `json:"-"`
	Pagination Pagination `json:"pagination"`
	Data       []Document `json:"data"`
}

// Run traduce la query string y la ejecuta contra la colección.
func Run(ctx context.Context, coll Collection, values url.Values, populate ...Populate) (*Result, error) {
	return Execute(ctx, coll, Parse(values), populate...)
}

// Execute lanza Find y Count con el mismo filtro y arma el sobre paginado.
// Las dos lecturas son independientes y se hacen en paralelo; el contexto del llamador
// se propaga tal cual y este componente no cancela ninguna de ellas.
func Execute(ctx context.Context, coll Collection, req Request, populate ...Populate) (*Result, error) {
	req.Page = clampPage(req.Page, req.Limit)
	window := req.Window()
	spec := FindSpec{
		Conditions: req.Conditions,
		Select:     req.Select,
		Sort:       req.Sort,
		Skip:       window.Offset,
		Limit:      window.Limit,
		Populate:   populate,
	}

	var (
		docs  []Document
		total int64
		g     errgroup.Group
	)
	g.Go(func() error {
		var err error
		docs, err = coll.Find(ctx, spec)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = coll.Count(ctx, req.Conditions)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryExecution, err)
	}

	if docs == nil {
		docs = []Document{}
	}

	return &Result{
		Success:    true,
		Count:      len(docs),
		Total:      total,
		Pagination: paginate(req.Page, req.Limit, total),
		Data:       docs,
	}, nil
}

func paginate(page, limit int, total int64) Pagination {
	start := (page - 1) * limit
	end := page * limit

	var p Pagination
	if int64(end) < total {
		p.Next = &PageRef{Page: page + 1, Limit: limit}
	}
	if start > 0 {
		p.Prev = &PageRef{Page: page - 1, Limit: limit}
	}
	return p
}
