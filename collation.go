package gotds

// Collation is the decoded form of a TDS 5-byte collation descriptor:
// `LL LL FL VF SS` → lcid/flags/version/sortId/codepage.
type Collation struct {
	LCID          uint32
	SortID        uint8
	Version       uint8
	IgnoreCase    bool
	IgnoreAccent  bool
	IgnoreKana    bool
	IgnoreWidth   bool
	Binary        bool
	Binary2       bool
	UTF8          bool
	ReservedBit   bool
	Codepage      string
}

const collationSize = 5

// parseCollation decodes a 5-byte collation descriptor. b must have length
// collationSize; the caller (the metadata decoder) is responsible for
// reading exactly that many bytes off the stream first.
func parseCollation(b []byte) (Collation, error) {
	if len(b) != collationSize {
		return Collation{}, &ProtocolError{Msg: "collation must be 5 bytes"}
	}
	b0, b1, b2, b3, b4 := b[0], b[1], b[2], b[3], b[4]

	lcid := uint32(b2&0x0F)<<16 | uint32(b1)<<8 | uint32(b0)
	flags := (b2 >> 4) | (b3&0x0F)<<4
	version := (b3 & 0xF0) >> 4

	c := Collation{
		LCID:         lcid,
		SortID:       b4,
		Version:      version,
		IgnoreCase:   flags&0x01 != 0,
		IgnoreAccent: flags&0x02 != 0,
		IgnoreKana:   flags&0x04 != 0,
		IgnoreWidth:  flags&0x08 != 0,
		Binary:       flags&0x10 != 0,
		Binary2:      flags&0x20 != 0,
		UTF8:         flags&0x40 != 0,
		ReservedBit:  flags&0x80 != 0,
	}
	c.Codepage = resolveCodepage(c)
	return c, nil
}

// marshalCollation encodes a Collation back into its 5-byte wire form, the
// reverse of parseCollation, for a bulk-load column that carries an explicit
// collation rather than the TDS default.
func marshalCollation(c Collation) [collationSize]byte {
	var flags byte
	if c.IgnoreCase {
		flags |= 0x01
	}
	if c.IgnoreAccent {
		flags |= 0x02
	}
	if c.IgnoreKana {
		flags |= 0x04
	}
	if c.IgnoreWidth {
		flags |= 0x08
	}
	if c.Binary {
		flags |= 0x10
	}
	if c.Binary2 {
		flags |= 0x20
	}
	if c.UTF8 {
		flags |= 0x40
	}
	if c.ReservedBit {
		flags |= 0x80
	}
	var b [collationSize]byte
	b[0] = byte(c.LCID)
	b[1] = byte(c.LCID >> 8)
	b[2] = byte((c.LCID>>16)&0x0F) | (flags&0x0F)<<4
	b[3] = (flags>>4)&0x0F | (c.Version << 4)
	b[4] = c.SortID
	return b
}

// resolveCodepage implements the lookup order: UTF8 flag wins; otherwise a
// nonzero sortId is looked up by sortId and a zero sortId by LCID; a miss
// in either table falls back to CP1252.
func resolveCodepage(c Collation) string {
	if c.UTF8 {
		return "utf8"
	}
	if c.SortID != 0 {
		if cp, ok := sortIDCodepages[c.SortID]; ok {
			return cp
		}
		return "CP1252"
	}
	if cp, ok := lcidCodepages[c.LCID]; ok {
		return cp
	}
	return "CP1252"
}

// lcidCodepages and sortIDCodepages are small, commonly-seen subsets of the
// full Windows LCID/sortID → codepage tables; entries not present fall
// back to CP1252, matching real-world driver behavior for the vast
// majority of Western-locale collations.
var lcidCodepages = map[uint32]string{
	0x0409: "CP1252", // en-US
	0x0809: "CP1252", // en-GB
	0x040C: "CP1252", // fr-FR
	0x0407: "CP1252", // de-DE
	0x0410: "CP1252", // it-IT
	0x0C0A: "CP1252", // es-ES
	0x0419: "CP1251", // ru-RU
	0x0411: "CP932",  // ja-JP
	0x0804: "CP936",  // zh-CN
	0x0412: "CP949",  // ko-KR
}

var sortIDCodepages = map[uint8]string{
	30: "CP437",
	31: "CP437",
	32: "CP850",
	33: "CP850",
	34: "CP850",
	40: "CP850",
	50: "CP1252",
	51: "CP1252",
	52: "CP1252",
	53: "CP1252",
	54: "CP1252",
	55: "CP850",
	56: "CP850",
	57: "CP850",
	58: "CP850",
	59: "CP850",
	60: "CP850",
	61: "CP850",
}
