package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/quantmind-br/cgitscrape/internal/document"
	"github.com/quantmind-br/cgitscrape/internal/domain"
)

const componentRefs = "refs"

// Refs extracts branches and tags from a refs page. The same tables appear
// on the summary page, truncated.
func (p *Parser) Refs(raw, sourceURL string) (*domain.Refs, error) {
	doc, err := document.Parse(raw, sourceURL)
	if err != nil {
		return nil, err
	}
	return p.refsFrom(doc, splitSections(doc.Find("table.list"))), nil
}

func (p *Parser) refsFrom(doc *document.Document, sections []section) *domain.Refs {
	refs := &domain.Refs{
		Branches: []domain.Ref{},
		Tags:     []domain.Ref{},
	}

	for _, sec := range sections {
		var refType domain.RefType
		switch sec.kind {
		case sectionBranch:
			refType = domain.RefBranch
		case sectionTag:
			refType = domain.RefTag
		default:
			continue
		}

		for _, row := range sec.rows {
			if isSpacerRow(row) || isMoreRow(row) {
				continue
			}
			ref, ok := p.refFromRow(doc, row, sec.columns, refType)
			if !ok {
				continue
			}
			if refType == domain.RefBranch {
				refs.Branches = append(refs.Branches, ref)
			} else {
				refs.Tags = append(refs.Tags, ref)
			}
		}
	}

	return refs
}

func (p *Parser) refFromRow(doc *document.Document, row *goquery.Selection, cols columns, refType domain.RefType) (domain.Ref, bool) {
	nameCell := cellAt(row, 0)
	if nameCell == nil {
		return domain.Ref{}, false
	}
	name := document.Text(nameCell.Find("a").First())
	if name == "" {
		name = document.Text(nameCell)
	}
	if name == "" {
		return domain.Ref{}, false
	}

	ref := domain.Ref{Name: name, Type: refType}

	if link := commitLink(row); link != nil {
		ref.SHA = queryParam(document.Attr(link, "href"), "id")
		// tag rows link the tagged object, not a message
		if refType == domain.RefBranch {
			ref.Message = document.Text(link)
			if title := document.Attr(link, "title"); len(title) > len(ref.Message) {
				ref.Message = title
			}
		}
	}
	if ref.SHA == "" {
		// tag rows often link only by name
		if href := document.Attr(nameCell.Find("a").First(), "href"); href != "" {
			ref.SHA = queryParam(href, "id")
		}
	}
	if ref.SHA == "" {
		p.report(doc, componentRefs, "a[href*='id=']", "ref without target commit", "name", name)
	}

	if cell := cellAt(row, cols.index(2, "author")); cell != nil {
		ref.Author = document.Text(cell)
	}

	ageText := ""
	if cell := cellAt(row, cols.index(3, "age")); cell != nil {
		ageText = document.Text(cell)
	}
	if s, ok := p.ageDate(row, ageText); ok {
		ref.Date = p.dates.ParsePtr(s)
	}

	ref.Message = strings.TrimSpace(ref.Message)
	return ref, true
}
