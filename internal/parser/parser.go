// Package parser extracts typed records from the HTML pages served by a
// cgit web front-end.
//
// Every extractor takes one page and an optional source URL (used for
// link resolution and error context only) and returns fresh records. A
// Parser holds no mutable state and is safe for concurrent use.
package parser

import (
	"time"

	"github.com/quantmind-br/cgitscrape/internal/dates"
	"github.com/quantmind-br/cgitscrape/internal/document"
	"github.com/quantmind-br/cgitscrape/internal/domain"
)

// Options configures a Parser
type Options struct {
	// Diagnostics receives recoverable oddities. Defaults to a no-op sink.
	Diagnostics domain.DiagnosticSink
	// Now is the clock used for relative dates and for the documented
	// last-resort timestamp defaults. Defaults to time.Now.
	Now func() time.Time
}

// Parser extracts records from cgit pages
type Parser struct {
	diag  domain.DiagnosticSink
	now   func() time.Time
	dates *dates.Resolver
}

// New creates a Parser
func New(opts Options) *Parser {
	if opts.Diagnostics == nil {
		opts.Diagnostics = domain.NopDiagnostics{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Parser{
		diag:  opts.Diagnostics,
		now:   opts.Now,
		dates: dates.NewResolver(opts.Now),
	}
}

func (p *Parser) report(doc *document.Document, component, selector, message string, kv ...string) {
	d := domain.Diagnostic{
		Component: component,
		Message:   message,
		Selector:  selector,
	}
	if doc != nil {
		d.SourceURL = doc.SourceURL()
	}
	if len(kv) > 1 {
		d.Fields = make(map[string]string, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			d.Fields[kv[i]] = kv[i+1]
		}
	}
	p.diag.Report(d)
}

// strategy is one way of pulling a value out of a document. Strategies
// are tried in order and the first hit wins.
type strategy[T any] func(doc *document.Document) (T, bool)

func firstOf[T any](doc *document.Document, strategies ...strategy[T]) (T, bool) {
	for _, s := range strategies {
		if v, ok := s(doc); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
