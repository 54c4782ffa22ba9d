// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
	"io"
	"log"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/dcpu16/translate"
)

// mnemonic is an instruction name's encoding.
type mnemonic struct {
	dat   bool
	basic bool
	code  uint16
}

var mnemonics = func() (table map[string]mnemonic) {
	table = map[string]mnemonic{
		"DAT": {dat: true},
	}
	for op, info := range opcodeTable {
		table[info.name] = mnemonic{basic: true, code: uint16(op)}
	}
	for sp, info := range specialTable {
		table[info.name] = mnemonic{code: uint16(sp)}
	}
	return
}()

// Assembler is a single pass macro assembler for the DCPU-16.
type Assembler struct {
	Verbose  bool     // If set, verbosely logs the assembler actions.
	Fs       afero.Fs // Filesystem for .INCLUDE. Defaults to the OS filesystem.
	MaxDepth int      // Maximum nesting of files, defines and macros.

	Label       map[string]int32  // Map of labels to addresses.
	Define      map[string]string // Map of defines to replacement text.
	Macro       map[string]*Macro // Map of macros.
	Diagnostics []error           // Diagnostics from the last Parse.

	predefine map[string]string // Predefines
}

// Predefine adds a define present at the start of every Parse.
func (asm *Assembler) Predefine(name string, value string) {
	if asm.predefine == nil {
		asm.predefine = make(map[string]string)
	}
	asm.predefine[strings.ToUpper(name)] = value
}

// operand is an operand being tokenized.
type operand struct {
	expr     Expression
	brackets bool
	used     bool
	neg      bool // Next factor is negated.
	mul      bool // Next factor multiplies the last term.

	addr  uint16 // Address of the instruction word.
	shift int    // Field position in the instruction word.
}

// forward is a trailing word waiting on labels.
type forward struct {
	addr   uint16
	expr   Expression
	file   string
	lineNo int
}

// parser is the state of a single Parse.
type parser struct {
	asm  *Assembler
	prog *Program

	mem [MEMORY_SIZE]uint16
	pc  uint16
	top int

	frames   []*frame
	lastFile string
	lastLine int

	ident   []byte
	label   bool
	comment bool

	inString bool
	escape   bool
	str      []byte

	meta       string
	define     string
	defineBody []byte
	macro      *Macro
	recording  bool
	body       strings.Builder
	call       *macroCall
	calls      int

	dat     bool
	fill    int
	op      operand
	op0     operand
	forward []forward
}

// Parse assembles a source stream into a Program.
//
// Problems in the source are diagnostics on the Program; err is only set
// if input cannot be read.
func (asm *Assembler) Parse(name string, input io.Reader) (prog *Program, err error) {
	data, err := io.ReadAll(input)
	if err != nil {
		return
	}

	if asm.Fs == nil {
		asm.Fs = afero.NewOsFs()
	}
	if asm.MaxDepth <= 0 {
		asm.MaxDepth = MAX_DEPTH
	}

	asm.Label = make(map[string]int32)
	asm.Define = make(map[string]string)
	maps.Copy(asm.Define, asm.predefine)
	asm.Macro = make(map[string]*Macro)
	asm.Diagnostics = nil

	prog = &Program{
		Labels:  asm.Label,
		Symbols: make(map[uint16][]string),
	}

	p := &parser{
		asm:  asm,
		prog: prog,
		fill: 1,
	}

	p.push(&frame{kind: FRAME_FILE, name: name, text: string(data) + "\n", lineNo: 1})
	p.run()
	p.link()

	prog.Image = slices.Clone(p.mem[:p.top])
	prog.Diagnostics = asm.Diagnostics

	if asm.Verbose {
		log.Printf("asm: %v: done, pc %v, %d diagnostics", name, translate.Hex(p.pc), len(asm.Diagnostics))
	}

	return
}

func (p *parser) logf(format string, args ...any) {
	file, lineNo, _ := p.location()
	log.Printf("asm: %v:%d: %v", file, lineNo, fmt.Sprintf(format, args...))
}

// report records a diagnostic at the current location.
func (p *parser) report(err error) {
	file, lineNo, macro := p.location()
	if macro != "" {
		err = &ErrMacro{Macro: macro, Err: err}
	}
	p.diagnose(&ErrSyntax{File: file, LineNo: lineNo, Err: err})
}

func (p *parser) diagnose(err error) {
	if p.asm.Verbose {
		log.Printf("asm: %v", err)
	}
	p.asm.Diagnostics = append(p.asm.Diagnostics, err)
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

func isIdent(c byte, first bool) bool {
	switch {
	case c >= 'A' && c <= 'Z', c == '_':
		return true
	case first:
		return c == '.' || c == '#'
	default:
		return c >= '0' && c <= '9'
	}
}

// run tokenizes until every frame is consumed.
func (p *parser) run() {
	for len(p.frames) > 0 {
		fr := p.frames[len(p.frames)-1]
		if fr.pos >= len(fr.text) {
			if len(p.ident) > 0 {
				p.flushIdent(p.peek())
				continue
			}
			p.pop()
			continue
		}
		fr.pos += p.step(fr, fr.text[fr.pos])
	}

	if p.inString {
		p.report(ErrStringUnterminate)
		p.inString = false
	}
	if p.call != nil {
		p.report(fmt.Errorf("%w: %v", ErrMacroCall, p.call.macro.Name))
		p.call = nil
	}
	if p.define != "" {
		p.commitDefine()
	}
	if p.recording {
		p.report(fmt.Errorf("%w: %v", ErrMacroLonely, p.macro.Name))
		p.endMacro()
	}
	p.flushOperands()
}

// step handles one character, returning how many to consume. Zero means
// the character must be seen again.
func (p *parser) step(fr *frame, raw byte) int {
	c := upper(raw)

	if p.call != nil {
		switch {
		case !p.call.open:
			p.call.open = true
			p.call.args = append(p.call.args, "")
		case c == ',':
			p.call.args = append(p.call.args, "")
		case c == ')':
			call := p.call
			p.call = nil
			p.invoke(call)
		default:
			p.call.args[len(p.call.args)-1] += string(raw)
		}
		return 1
	}

	if p.recording {
		rest := fr.text[fr.pos:]
		if (c == '.' || c == '#') && len(rest) >= 9 && strings.EqualFold(rest[1:9], "ENDMACRO") {
			p.endMacro()
			return 9
		}
		p.body.WriteByte(raw)
		if c == '\n' && fr.kind == FRAME_FILE {
			p.endLine(fr)
		}
		return 1
	}

	if p.inString {
		switch {
		case p.escape:
			p.str = append(p.str, raw)
			p.escape = false
		case c == '\\':
			p.escape = true
		case c == '"':
			p.inString = false
			p.endString()
		case c == '\n':
			p.report(ErrStringUnterminate)
			p.inString = false
			p.endString()
			return 0
		default:
			p.str = append(p.str, raw)
		}
		return 1
	}

	if p.define != "" && c != '\n' {
		p.defineBody = append(p.defineBody, raw)
		return 1
	}

	if p.comment && c != '\n' {
		return 1
	}

	if isIdent(c, len(p.ident) == 0) {
		p.ident = append(p.ident, c)
		return 1
	}

	if len(p.ident) > 0 {
		if c == ':' {
			p.label = true
			p.flushIdent(c)
			return 1
		}
		p.flushIdent(c)
		return 0
	}

	switch {
	case c == '\n':
		p.newline(fr)
	case c == ';':
		p.comment = true
	case c == '"':
		p.inString = true
		p.str = p.str[:0]
	case c == '$' && fr.pos+1 < len(fr.text) && fr.text[fr.pos+1] == '(':
		return p.eval(fr)
	case c == ':':
		p.label = true
	case c <= ' ':
		// whitespace
	case c == ',':
		switch {
		case p.meta == "MACRO":
		case p.dat:
			p.flushOp()
		default:
			p.op0 = p.op
			p.op = operand{addr: p.op.addr, shift: 10}
		}
	case c == '-':
		p.op.neg = !p.op.neg
	case c == '*':
		p.op.mul = true
	case c == '+':
	case c == '[':
		p.op.brackets = true
	case c == ']', c == '(':
	case c == ')':
		if p.meta == "MACRO" && p.macro != nil {
			p.beginMacro()
		}
	case c >= '0' && c <= '9':
		return p.number(fr)
	default:
		p.report(ErrCharacter(rune(raw)))
	}

	return 1
}

// newline ends a statement.
func (p *parser) newline(fr *frame) {
	if p.define != "" {
		p.commitDefine()
	}

	p.flushOperands()

	if p.meta == "MACRO" {
		if p.macro != nil {
			p.beginMacro()
		} else {
			p.report(ErrMacroSyntax)
		}
	}

	p.meta = ""
	p.comment = false
	p.label = false

	if fr.kind == FRAME_FILE {
		p.endLine(fr)
	}
}

// endLine records the listing entry for the line ending at fr.pos.
func (p *parser) endLine(fr *frame) {
	if fr.lineSize > 0 {
		text := strings.TrimRight(fr.text[fr.lineStart:fr.pos], "\r\n")
		p.prog.Lines = append(p.prog.Lines, Line{
			File:   fr.name,
			LineNo: fr.lineNo,
			Ip:     fr.lineIp,
			Size:   fr.lineSize,
			Text:   text,
		})
	}

	fr.lineNo++
	fr.lineStart = fr.pos + 1
	fr.lineSize = 0
}

// flushIdent classifies a completed identifier. next is the character
// following it.
func (p *parser) flushIdent(next byte) {
	id := string(p.ident)
	p.ident = p.ident[:0]

	switch p.meta {
	case "DEFINE":
		p.define = id
		p.defineBody = p.defineBody[:0]
		p.meta = ""
		return
	case "MACRO":
		if p.macro == nil {
			file, lineNo, _ := p.location()
			p.macro = &Macro{Name: id, File: file, LineNo: lineNo}
		} else {
			p.macro.Params = append(p.macro.Params, id)
		}
		return
	}

	if body, ok := p.asm.Define[id]; ok {
		p.expand(id, body)
		return
	}

	if m, ok := p.asm.Macro[id]; ok && next == '(' {
		p.call = &macroCall{macro: m}
		return
	}

	if id == ".ENDMACRO" || id == "#ENDMACRO" {
		p.report(ErrMacroLonelyEnd)
		return
	}

	if id == ".DAT" || id == "#DAT" {
		id = "DAT"
	}

	if id[0] == '.' || id[0] == '#' {
		name := id[1:]
		switch name {
		case "DEFINE", "ORG", "FILL", "INCLUDE":
			p.flushOperands()
		case "MACRO":
			p.flushOperands()
			p.macro = nil
		default:
			p.report(ErrMetaUnknown(id))
			return
		}
		p.meta = name
		return
	}

	if p.label {
		p.label = false
		p.defineLabel(id)
		return
	}

	if mn, ok := mnemonics[id]; ok {
		p.flushOperands()
		p.instruction(mn)
		return
	}

	p.op.expr.AddIdent(id, p.op.neg, p.op.mul)
	p.op.neg = false
	p.op.mul = false
	p.op.used = true
}

func (p *parser) defineLabel(name string) {
	p.flushOperands()

	if _, ok := p.asm.Label[name]; ok {
		p.report(fmt.Errorf("%w: %v", ErrLabelDuplicate, name))
		return
	}

	p.asm.Label[name] = int32(p.pc)
	p.prog.Symbols[p.pc] = append(p.prog.Symbols[p.pc], name)

	if p.asm.Verbose {
		p.logf("%v = %v", name, translate.Hex(p.pc))
	}
}

// instruction starts a new instruction.
func (p *parser) instruction(mn mnemonic) {
	p.dat = mn.dat

	shift := 10
	if mn.basic {
		shift = 5
	}
	p.op = operand{addr: p.pc, shift: shift}
	p.op0 = operand{}

	switch {
	case mn.dat:
	case mn.basic:
		p.emit(mn.code)
	default:
		p.emit(mn.code << 5)
	}
}

// emit writes a word at the program counter.
func (p *parser) emit(word uint16) {
	if fr := p.fileFrame(); fr != nil {
		if fr.lineSize == 0 {
			fr.lineIp = p.pc
		}
		fr.lineSize++
	}

	p.mem[p.pc] = word
	p.top = max(p.top, int(p.pc)+1)
	p.pc++
}

func (p *parser) addConst(value int64) {
	p.op.expr.AddConst(value, p.op.neg, p.op.mul)
	p.op.neg = false
	p.op.mul = false
	p.op.used = true
}

// number parses a C style integer.
func (p *parser) number(fr *frame) int {
	end := fr.pos
	for end < len(fr.text) {
		c := upper(fr.text[end])
		if !(c >= '0' && c <= '9') && !(c >= 'A' && c <= 'Z') {
			break
		}
		end++
	}

	text := strings.ToUpper(fr.text[fr.pos:end])
	value, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		p.report(ErrNumber(text))
		value = 0
	}
	p.addConst(value)

	return end - fr.pos
}

// eval handles $(...) at fr.pos.
func (p *parser) eval(fr *frame) int {
	depth := 0
	end := -1
scan:
	for n := fr.pos + 1; n < len(fr.text); n++ {
		switch fr.text[n] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				end = n
				break scan
			}
		case '\n':
			break scan
		}
	}

	if end < 0 {
		p.report(ErrParseExpression(fr.text[fr.pos:]))
		return 1
	}

	expr := strings.ToUpper(fr.text[fr.pos+2 : end])
	value, err := p.parenEval(expr)
	if err != nil {
		p.report(err)
		value = 0
	}
	p.addConst(value)

	return end + 1 - fr.pos
}

// parenEval does compile-time $(...) evaluations
func (p *parser) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range p.asm.Define {
		v64, perr := strconv.ParseInt(strings.TrimSpace(str), 0, 64)
		if perr != nil {
			// Ignore non-integer defines. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	for key, addr := range p.asm.Label {
		pred[key] = starlark.MakeInt64(int64(addr))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// endString handles a completed string literal.
func (p *parser) endString() {
	text := string(p.str)
	p.str = p.str[:0]

	if p.meta == "INCLUDE" {
		p.meta = ""
		p.include(text)
		return
	}

	for n := range len(text) {
		p.emit(uint16(text[n]))
	}
}

// flushOp encodes the current operand, honoring a pending .FILL.
func (p *parser) flushOp() {
	if p.op.used {
		for ; p.fill > 1; p.fill-- {
			p.encode(p.op)
		}
	}
	p.encode(p.op)
	p.op = operand{addr: p.op.addr, shift: p.op.shift}
}

// flushOperands encodes a, then b.
func (p *parser) flushOperands() {
	p.flushOp()
	p.encode(p.op0)
	p.op0 = operand{}
}

// encode writes an operand into the instruction word at op.addr, and emits
// its trailing word if it needs one.
func (p *parser) encode(op operand) {
	if !op.used {
		return
	}

	value, register := op.expr.Simplify(p.asm.Label, false, p.report)
	resolved := op.expr.Known()

	hasRegister := register >= 0
	hasOffset := !resolved || value != 0 || !hasRegister
	small := resolved && uint16(value+1) <= 0x1f && op.shift == 10

	if (op.brackets || hasRegister) && (p.dat || p.meta != "") {
		if op.brackets {
			p.report(ErrBracketInvalid)
		} else {
			p.report(ErrRegisterInvalid)
		}
	}
	if hasRegister && hasOffset && !op.brackets && register != OPERAND_PICK {
		p.report(ErrOffsetInvalid)
	}
	if hasRegister && hasOffset && register >= 8 && register != OPERAND_SP && register != OPERAND_PICK {
		p.report(ErrOffsetRegister)
	}
	if hasRegister && op.brackets && register >= 8 && register != OPERAND_SP {
		p.report(ErrIndirectRegister)
	}

	switch p.meta {
	case "ORG", "FILL":
		if !resolved {
			p.report(ErrValueUnresolved)
		} else if p.meta == "ORG" {
			p.pc = uint16(value)
		} else {
			p.fill = int(value)
		}
		p.meta = ""
		return
	case "INCLUDE":
		p.report(ErrIncludeSyntax)
		p.meta = ""
		return
	}

	if !hasRegister && !op.brackets && hasOffset && small && !p.dat {
		p.mem[op.addr] |= ((uint16(value) + OPERAND_INLINE_BIAS) & 0x3f) << op.shift
		return
	}

	code := OPERAND_LITERAL
	if op.brackets {
		code = OPERAND_INDIRECT
	}
	if register == OPERAND_PICK && !hasOffset {
		register = OPERAND_PEEK
	}
	if hasRegister {
		code = register
	}
	if hasRegister && op.brackets {
		if hasOffset {
			code |= OPERAND_REG_OFFSET
		} else {
			code |= OPERAND_REG_INDIRECT
		}
	}
	if register == OPERAND_SP && op.brackets {
		if hasOffset {
			code = OPERAND_PICK
		} else {
			code = OPERAND_PEEK
		}
	}

	if !p.dat {
		p.mem[op.addr] |= uint16(code) << op.shift
	}

	if hasOffset {
		if !resolved {
			file, lineNo, _ := p.location()
			p.forward = append(p.forward, forward{addr: p.pc, expr: op.expr, file: file, lineNo: lineNo})
		}
		p.emit(uint16(value))
	}
}

// link resolves forward declarations.
func (p *parser) link() {
	for _, fw := range p.forward {
		value, _ := fw.expr.Simplify(p.asm.Label, true, func(err error) {
			p.diagnose(&ErrSyntax{File: fw.file, LineNo: fw.lineNo, Err: err})
		})
		p.mem[fw.addr] += uint16(value)
	}
	p.forward = nil
}
