package device

// font is the built-in LEM1802 font: two words per glyph, 128 glyphs. Each
// word holds two 8 pixel columns, the left column in the high byte. Bit 0
// of a column is its top pixel.
var font = [DISPLAY_FONT_SIZE]uint16{
	0x0000, 0x0000, 0x3e65, 0x653e, 0x3e5b, 0x5b3e, 0x1e7c, 0x1e00,
	0x1c7f, 0x1c00, 0x4c73, 0x4c00, 0x5c7f, 0x5c00, 0x183c, 0x1800,
	0xe7c3, 0xe7ff, 0x1824, 0x1800, 0xe7db, 0xe7ff, 0xe7db, 0xe7ff,
	0x2c72, 0x2c00, 0x607f, 0x0507, 0x607f, 0x617f, 0x2a1f, 0x7c2a,
	0x7f3e, 0x1c08, 0x081c, 0x3e7f, 0x227f, 0x7f22, 0x5f00, 0x5f00,
	0x0609, 0x7f7f, 0x9aa5, 0xa559, 0x6060, 0x6060, 0xa2ff, 0xffa2,
	0x027f, 0x7f02, 0x207f, 0x7f20, 0x1818, 0x3c18, 0x183c, 0x1818,
	0x3020, 0x2020, 0x081c, 0x1c08, 0x707e, 0x7e70, 0x0e7e, 0x7e0e,
	0x0000, 0x0000, 0x005f, 0x0000, 0x0700, 0x0700, 0x3e14, 0x3e00,
	0x266b, 0x3200, 0x611c, 0x4300, 0x6659, 0xe690, 0x0005, 0x0300,
	0x1c22, 0x4100, 0x4122, 0x1c00, 0x2a1c, 0x2a00, 0x083e, 0x0800,
	0x00a0, 0x6000, 0x0808, 0x0800, 0x0060, 0x0000, 0x601c, 0x0300,
	0x3e4d, 0x3e00, 0x427f, 0x4000, 0x6259, 0x4600, 0x2249, 0x3600,
	0x0e08, 0x7f00, 0x2745, 0x3900, 0x3e49, 0x3200, 0x6119, 0x0700,
	0x3649, 0x3600, 0x2649, 0x3e00, 0x0066, 0x0000, 0x8066, 0x0000,
	0x0814, 0x2241, 0x1414, 0x1400, 0x4122, 0x1408, 0x0259, 0x0600,
	0x3e59, 0x5e00, 0x7e09, 0x7e00, 0x7f49, 0x3600, 0x3e41, 0x2200,
	0x7f41, 0x3e00, 0x7f49, 0x4100, 0x7f09, 0x0100, 0x3e49, 0x3a00,
	0x7f08, 0x7f00, 0x417f, 0x4100, 0x2040, 0x3f00, 0x7f0c, 0x7300,
	0x7f40, 0x4000, 0x7f0e, 0x7f00, 0x7e1c, 0x7f00, 0x7f41, 0x7f00,
	0x7f09, 0x0600, 0x3e41, 0xbe00, 0x7f09, 0x7600, 0x2649, 0x3200,
	0x017f, 0x0100, 0x7f40, 0x7f00, 0x1f60, 0x1f00, 0x7f30, 0x7f00,
	0x771c, 0x7700, 0x0778, 0x0700, 0x615d, 0x4300, 0x007f, 0x4100,
	0x0618, 0x6000, 0x0041, 0x7f00, 0x0c06, 0x0c00, 0x8080, 0x8080,
	0x0003, 0x0500, 0x2454, 0x7800, 0x7f44, 0x3800, 0x3844, 0x2800,
	0x3844, 0x7f00, 0x3854, 0x5800, 0x087e, 0x0900, 0x98a4, 0x7c00,
	0x7f04, 0x7800, 0x047d, 0x0000, 0x4080, 0x7d00, 0x7f10, 0x6c00,
	0x417f, 0x4000, 0x7c18, 0x7c00, 0x7c04, 0x7800, 0x3844, 0x3800,
	0xfc24, 0x1800, 0x1824, 0xfc80, 0x7c04, 0x0800, 0x4854, 0x2400,
	0x043e, 0x4400, 0x3c40, 0x7c00, 0x1c60, 0x1c00, 0x7c30, 0x7c00,
	0x6c10, 0x6c00, 0x9ca0, 0x7c00, 0x6454, 0x4c00, 0x0836, 0x4100,
	0x0077, 0x0000, 0x4136, 0x0800, 0x0201, 0x0201, 0x704c, 0x7000,
}

// palette is the built-in LEM1802 palette, as 0x0RGB.
var palette = [DISPLAY_PALETTE_SIZE]uint16{
	0x000, 0x00a, 0x0a0, 0x0aa, 0xa00, 0xa0a, 0xaa5, 0xaaa,
	0x555, 0x55f, 0x5f5, 0x5ff, 0xf55, 0xf5f, 0xff5, 0xfff,
}
