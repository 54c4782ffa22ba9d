package cpu

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseProgram(t *testing.T, source ...string) *Program {
	t.Helper()

	asm := &Assembler{}
	prog, err := asm.Parse("prog.asm", strings.NewReader(strings.Join(source, "\n")))
	require.NoError(t, err)
	require.NoError(t, prog.Err())

	return prog
}

func TestProgram_Debug(t *testing.T) {
	assert := assert.New(t)

	prog := parseProgram(t,
		"SET A, 1",
		"; nothing here",
		"SET B, 0x1000",
		"ADD A, B",
	)

	table := [](struct {
		ip     uint16
		lineNo int
		index  int
	}){
		{0, 1, 0},
		{1, 3, 0},
		{2, 3, 1},
		{3, 4, 0},
	}

	for _, entry := range table {
		dbg := prog.Debug(entry.ip)
		if assert.NotNil(dbg.Line, "ip %d", entry.ip) {
			assert.Equal(entry.lineNo, dbg.LineNo, "ip %d", entry.ip)
			assert.Equal(entry.index, dbg.Index, "ip %d", entry.ip)
		}
	}
}

func TestProgram_Debug_NotFound(t *testing.T) {
	assert := assert.New(t)

	prog := parseProgram(t, "SET A, 1")

	dbg := prog.Debug(10)
	assert.Nil(dbg.Line)
	assert.Equal(0, dbg.Index)
}

func TestProgram_Binary(t *testing.T) {
	assert := assert.New(t)

	prog := parseProgram(t, "DAT 0x1234, 0xabcd")

	bins := prog.Binary()
	assert.Equal([]byte{0x12, 0x34, 0xab, 0xcd}, bins)

	image, err := LoadBinary(bytes.NewReader(bins))
	assert.NoError(err)
	assert.Equal(prog.Image, image)

	image, err = LoadBinary(bytes.NewReader([]byte{0x00, 0x01, 0x02}))
	assert.NoError(err)
	assert.Equal([]uint16{0x0001}, image)
}

func TestProgram_Codes(t *testing.T) {
	assert := assert.New(t)

	prog := parseProgram(t,
		"SET A, 0x100",
		"HCF 0",
	)

	var ips []uint16
	var codes []Code
	for ip, code := range prog.Codes() {
		ips = append(ips, ip)
		codes = append(codes, code)
	}

	assert.Equal([]uint16{0, 1, 2}, ips)
	assert.Equal([]Code{
		MakeCode(OP_SET, 0x00, OPERAND_LITERAL),
		Code(0x100),
		MakeCodeSpecial(SPECIAL_HCF, 0x21),
	}, codes)
}

func TestProgram_Listing(t *testing.T) {
	assert := assert.New(t)

	prog := parseProgram(t,
		"SET A, 0x100",
		"loop: SET PC, loop",
	)

	var sb strings.Builder
	assert.NoError(prog.Listing(&sb))

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	if assert.Equal(2, len(lines)) {
		assert.True(strings.HasPrefix(lines[0], "0000: 7c01 0100"), lines[0])
		assert.Contains(lines[0], "SET A, 0x100")
		assert.Contains(lines[0], "; SET A, 0x100")
		assert.True(strings.HasPrefix(lines[1], "0002: 8f81"), lines[1])
		assert.Contains(lines[1], "LOOP: SET PC, 0x2")
		assert.Contains(lines[1], "; loop: SET PC, loop")
	}
}
