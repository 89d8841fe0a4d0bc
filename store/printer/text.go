package printer

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/joshuapare/termstore/store"
)

// printText prints t in term syntax.
func (p *Printer) printText(t store.Term) error {
	var sb strings.Builder
	p.writeText(&sb, t, 0)
	sb.WriteByte('\n')
	_, err := fmt.Fprint(p.writer, sb.String())
	return err
}

func (p *Printer) writeText(sb *strings.Builder, t store.Term, depth int) {
	if p.opts.MaxDepth > 0 && depth >= p.opts.MaxDepth {
		sb.WriteString("...")
		return
	}
	h := p.heap

	switch h.Kind(t) {
	case store.KindInt:
		sb.WriteString(strconv.FormatInt(h.Int(t), 10))
	case store.KindReal:
		sb.WriteString(formatReal(h.Real(t)))
	case store.KindAppl:
		sym := h.Symbol(t)
		writeName(sb, h.SymbolName(sym), h.SymbolQuoted(sym))
		if args := h.Args(t); len(args) > 0 {
			sb.WriteByte('(')
			for i, a := range args {
				if i > 0 {
					sb.WriteByte(',')
				}
				p.writeText(sb, a, depth+1)
			}
			sb.WriteByte(')')
		}
	case store.KindList:
		sb.WriteByte('[')
		p.writeElems(sb, t, depth+1)
		sb.WriteByte(']')
	case store.KindPlaceholder:
		sb.WriteByte('<')
		p.writeText(sb, h.PlaceholderType(t), depth+1)
		sb.WriteByte('>')
	case store.KindBlob:
		data := h.BlobData(t)
		fmt.Fprintf(sb, "#%d:", len(data))
		sb.WriteString(p.blobHex(data))
	}

	if annos := h.Annotations(t); p.opts.ShowAnnotations && annos != store.Nil {
		sb.WriteByte('{')
		if h.Kind(annos) == store.KindList {
			p.writeElems(sb, annos, depth+1)
		} else {
			p.writeText(sb, annos, depth+1)
		}
		sb.WriteByte('}')
	}
}

func (p *Printer) writeElems(sb *strings.Builder, l store.Term, depth int) {
	h := p.heap
	for i := 0; !h.IsEmpty(l); i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		p.writeText(sb, h.Head(l), depth)
		l = h.Tail(l)
	}
}

func (p *Printer) blobHex(data []byte) string {
	if p.opts.MaxBlobBytes > 0 && len(data) > p.opts.MaxBlobBytes {
		return hex.EncodeToString(data[:p.opts.MaxBlobBytes]) + "..."
	}
	return hex.EncodeToString(data)
}

// formatReal keeps reals distinguishable from integers.
func formatReal(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func writeName(sb *strings.Builder, name string, quoted bool) {
	if !quoted {
		sb.WriteString(name)
		return
	}
	sb.WriteByte('"')
	for _, r := range name {
		switch r {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
}
