package cpu

import (
	"fmt"
	"maps"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	MAX_DEPTH = 64 // Default limit of nested files, defines and macros.
)

// Macro is a .MACRO definition.
type Macro struct {
	Name   string   // Macro name.
	Params []string // Parameter names, in order.
	Body   string   // Text substituted on invocation.
	File   string   // File the macro was defined in.
	LineNo int      // Line of the .MACRO header.
}

type frameKind int

const (
	FRAME_FILE   = frameKind(iota) // file
	FRAME_DEFINE                   // define
	FRAME_MACRO                    // macro
)

// frame is one level of input: a file, or the expansion of a define or
// macro. The tokenizer always reads from the top frame.
type frame struct {
	kind frameKind
	name string
	text string
	pos  int

	// File frames only.
	lineNo    int
	lineStart int
	lineIp    uint16
	lineSize  int

	onPop func()
}

type macroCall struct {
	macro *Macro
	args  []string
	open  bool
}

func (p *parser) push(fr *frame) (ok bool) {
	if len(p.frames) >= p.asm.MaxDepth {
		p.report(fmt.Errorf("%w: %v", ErrExpansionDepth, fr.name))
		return
	}

	p.frames = append(p.frames, fr)

	return true
}

func (p *parser) pop() {
	fr := p.frames[len(p.frames)-1]
	p.frames = p.frames[:len(p.frames)-1]

	if fr.kind == FRAME_FILE {
		p.lastFile = fr.name
		p.lastLine = fr.lineNo
	}

	if fr.onPop != nil {
		fr.onPop()
	}
}

// peek returns the next unread character of any frame, or 0.
func (p *parser) peek() byte {
	for n := len(p.frames) - 1; n >= 0; n-- {
		fr := p.frames[n]
		if fr.pos < len(fr.text) {
			return upper(fr.text[fr.pos])
		}
	}
	return 0
}

// fileFrame returns the innermost file being read.
func (p *parser) fileFrame() *frame {
	for n := len(p.frames) - 1; n >= 0; n-- {
		if p.frames[n].kind == FRAME_FILE {
			return p.frames[n]
		}
	}
	return nil
}

// location returns the file, line and innermost macro being expanded.
func (p *parser) location() (file string, lineNo int, macro string) {
	for n := len(p.frames) - 1; n >= 0; n-- {
		fr := p.frames[n]
		switch fr.kind {
		case FRAME_MACRO:
			if macro == "" {
				macro = fr.name
			}
		case FRAME_FILE:
			return fr.name, fr.lineNo, macro
		}
	}
	return p.lastFile, p.lastLine, macro
}

// expand substitutes a define.
func (p *parser) expand(name string, body string) {
	p.push(&frame{kind: FRAME_DEFINE, name: name, text: body})
}

// invoke expands a macro call. Parameters shadow defines of the same name
// until the expansion ends.
func (p *parser) invoke(call *macroCall) {
	m := call.macro

	p.calls++
	body := strings.ReplaceAll(m.Body, "@", fmt.Sprintf("%v_%v_", m.Name, p.calls))

	params := m.Params[:min(len(m.Params), len(call.args))]
	old_define := maps.Clone(p.asm.Define)

	fr := &frame{kind: FRAME_MACRO, name: m.Name, text: body}
	fr.onPop = func() {
		for _, param := range params {
			value, ok := old_define[param]
			if ok {
				p.asm.Define[param] = value
			} else {
				delete(p.asm.Define, param)
			}
		}
	}

	if !p.push(fr) {
		return
	}

	for n, param := range params {
		p.asm.Define[param] = call.args[n]
	}
}

// include reads a file relative to the including file.
func (p *parser) include(name string) {
	if len(name) == 0 {
		p.report(ErrIncludeSyntax)
		return
	}

	path := name
	if fr := p.fileFrame(); fr != nil && !filepath.IsAbs(name) {
		path = filepath.Join(filepath.Dir(fr.name), name)
	}

	data, err := afero.ReadFile(p.asm.Fs, path)
	if err != nil {
		p.report(err)
		return
	}

	if p.asm.Verbose {
		p.logf("include %v", path)
	}

	p.push(&frame{kind: FRAME_FILE, name: path, text: string(data) + "\n", lineNo: 1})
}

// beginMacro starts recording the body of the macro being declared.
func (p *parser) beginMacro() {
	m := p.macro
	if _, ok := p.asm.Macro[m.Name]; ok {
		p.report(fmt.Errorf("%w: %v", ErrMacroDuplicate, m.Name))
	}
	p.asm.Macro[m.Name] = m
	p.meta = ""
	p.recording = true
	p.body.Reset()
}

// endMacro finishes recording.
func (p *parser) endMacro() {
	p.macro.Body = p.body.String()
	p.macro = nil
	p.recording = false
}

// commitDefine stores the .DEFINE being recorded.
func (p *parser) commitDefine() {
	name := p.define
	body := string(p.defineBody)
	if n := strings.IndexByte(body, ';'); n >= 0 {
		body = body[:n]
	}
	body = strings.TrimSpace(body)

	p.define = ""
	p.defineBody = p.defineBody[:0]

	if _, ok := p.asm.Define[name]; ok {
		p.report(fmt.Errorf("%w: %v", ErrDefineDuplicate, name))
		return
	}

	p.asm.Define[name] = body
}
