package document

import (
	"slices"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// patchLines rewrites original so that it carries the changes between
// before and after, two renderings of the document by the same encoder.
//
// Lines of before are matched against original ignoring whitespace. A line
// that is matched and unchanged between the renderings is an anchor. Text
// between two anchors is copied from original when the renderings agree on
// it and taken from after otherwise, re-indented to follow original.
func patchLines(original string, before, after []string) string {
	eol := lineEnding(original)
	orig := splitLines(original)

	if len(before) == 0 {
		for len(orig) > 0 && strings.TrimSpace(orig[len(orig)-1]) == "" {
			orig = orig[:len(orig)-1]
		}
		p := &patcher{}
		p.out = append(p.out, orig...)
		for _, line := range after {
			p.add(line)
		}
		return joinLines(p.out, eol)
	}

	p := newPatcher(before, after, orig)
	var anchors []anchor
	for _, op := range difflib.NewMatcherWithJunk(before, after, false, nil).GetOpCodes() {
		if op.Tag != 'e' {
			continue
		}
		for i := op.I1; i < op.I2; i++ {
			if o := p.align[i]; o >= 0 {
				anchors = append(anchors, anchor{b: i, o: o, m: op.J1 + i - op.I1})
			}
		}
	}
	anchors = append(anchors, anchor{b: len(before), o: len(orig), m: len(after)})

	prev := anchor{b: -1, o: -1, m: -1}
	for _, a := range anchors {
		p.segment(prev, a)
		if a.b < len(before) {
			p.keep(a.o)
		}
		prev = a
	}
	return joinLines(p.out, eol)
}

type anchor struct {
	b, o, m int
}

// indentPair records the indentation of one output line in the rendering
// and in the output.
type indentPair struct {
	rendered, written int
}

type patcher struct {
	before, after, orig []string
	// align maps lines of before to lines of orig, -1 when unmatched.
	align []int
	// back is the inverse of align.
	back []int
	out  []string
	ctx  []indentPair
}

func newPatcher(before, after, orig []string) *patcher {
	p := &patcher{
		before: before,
		after:  after,
		orig:   orig,
		align:  alignLines(before, orig),
		back:   make([]int, len(orig)),
	}
	for i := range p.back {
		p.back[i] = -1
	}
	for i, o := range p.align {
		if o >= 0 {
			p.back[o] = i
		}
	}
	return p
}

// segment emits the text strictly between two anchors.
func (p *patcher) segment(from, to anchor) {
	if slices.Equal(p.before[from.b+1:to.b], p.after[from.m+1:to.m]) {
		for o := from.o + 1; o < to.o; o++ {
			p.keep(o)
		}
		return
	}

	// Unmatched rendered lines mean the original spells them differently;
	// the original spelling is dropped and only its blank lines survive.
	reformatted := false
	for i := from.b + 1; i < to.b; i++ {
		if p.align[i] < 0 {
			reformatted = true
			break
		}
	}
	keepLoose := func(o int) {
		if !reformatted || strings.TrimSpace(p.orig[o]) == "" {
			p.keep(o)
		}
	}

	first, last := -1, -1
	for o := from.o + 1; o < to.o; o++ {
		if p.back[o] >= 0 {
			if first < 0 {
				first = o
			}
			last = o
		}
	}
	if first < 0 {
		first, last = from.o+1, from.o
	}

	for o := from.o + 1; o < first; o++ {
		keepLoose(o)
	}
	for _, line := range p.after[from.m+1 : to.m] {
		p.add(line)
	}
	for o := last + 1; o < to.o; o++ {
		keepLoose(o)
	}
}

// keep copies line o of the original to the output.
func (p *patcher) keep(o int) {
	line := p.orig[o]
	p.out = append(p.out, line)
	if b := p.back[o]; b >= 0 && strings.TrimSpace(line) != "" {
		p.ctx = append(p.ctx, indentPair{rendered: indentOf(p.before[b]), written: indentOf(line)})
	}
}

// add appends a rendered line, shifted to line up with the nearest
// preceding sibling or ancestor in the output.
func (p *patcher) add(line string) {
	body := strings.TrimLeft(line, " ")
	if body == "" {
		p.out = append(p.out, "")
		return
	}
	k := len(line) - len(body)
	n := k
	for i := len(p.ctx) - 1; i >= 0; i-- {
		c := p.ctx[i]
		if c.rendered > k {
			continue
		}
		n = c.written + k - c.rendered
		break
	}
	p.out = append(p.out, strings.Repeat(" ", n)+body)
	p.ctx = append(p.ctx, indentPair{rendered: k, written: n})
}

// alignLines matches lines of before to lines of orig, ignoring differences
// in whitespace.
func alignLines(before, orig []string) []int {
	align := make([]int, len(before))
	for i := range align {
		align[i] = -1
	}
	m := difflib.NewMatcherWithJunk(normalizeLines(before), normalizeLines(orig), false, nil)
	for _, blk := range m.GetMatchingBlocks() {
		for k := 0; k < blk.Size; k++ {
			align[blk.A+k] = blk.B + k
		}
	}
	return align
}

func normalizeLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.Join(strings.Fields(l), " ")
	}
	return out
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " "))
}

func lineEnding(s string) string {
	if strings.Contains(s, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

// splitLines splits s into lines without their terminators.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func joinLines(lines []string, eol string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, eol) + eol
}
