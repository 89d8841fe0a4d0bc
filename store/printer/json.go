package printer

import (
	"encoding/json"
	"strings"

	"github.com/joshuapare/termstore/store"
)

// jsonTerm represents a term in JSON format.
type jsonTerm struct {
	Kind        string     `json:"kind"`
	Value       any        `json:"value,omitempty"`
	Name        string     `json:"name,omitempty"`
	Quoted      bool       `json:"quoted,omitempty"`
	Args        []jsonTerm `json:"args,omitempty"`
	Elems       []jsonTerm `json:"elems,omitempty"`
	Type        *jsonTerm  `json:"type,omitempty"`
	Size        int        `json:"size,omitempty"`
	Data        string     `json:"data,omitempty"`
	Annotations *jsonTerm  `json:"annotations,omitempty"`
	Truncated   bool       `json:"truncated,omitempty"`
}

// printJSON prints t as an indented JSON document.
func (p *Printer) printJSON(t store.Term) error {
	enc := json.NewEncoder(p.writer)
	if p.opts.IndentSize > 0 {
		enc.SetIndent("", strings.Repeat(" ", p.opts.IndentSize))
	}
	return enc.Encode(p.toJSON(t, 0))
}

func (p *Printer) toJSON(t store.Term, depth int) jsonTerm {
	h := p.heap
	kind := h.Kind(t)
	out := jsonTerm{Kind: kind.String()}
	if p.opts.MaxDepth > 0 && depth >= p.opts.MaxDepth {
		out.Truncated = true
		return out
	}

	switch kind {
	case store.KindInt:
		out.Value = h.Int(t)
	case store.KindReal:
		// JSON has no NaN or infinities; keep the term syntax spelling.
		out.Value = formatReal(h.Real(t))
	case store.KindAppl:
		sym := h.Symbol(t)
		out.Name = h.SymbolName(sym)
		out.Quoted = h.SymbolQuoted(sym)
		for _, a := range h.Args(t) {
			out.Args = append(out.Args, p.toJSON(a, depth+1))
		}
	case store.KindList:
		out.Elems = []jsonTerm{}
		for l := t; !h.IsEmpty(l); l = h.Tail(l) {
			out.Elems = append(out.Elems, p.toJSON(h.Head(l), depth+1))
		}
	case store.KindPlaceholder:
		typ := p.toJSON(h.PlaceholderType(t), depth+1)
		out.Type = &typ
	case store.KindBlob:
		data := h.BlobData(t)
		out.Size = len(data)
		out.Data = p.blobHex(data)
	}

	if annos := h.Annotations(t); p.opts.ShowAnnotations && annos != store.Nil {
		a := p.toJSON(annos, depth+1)
		out.Annotations = &a
	}
	return out
}
