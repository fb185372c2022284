package gotds

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// codepageEncodings maps the codepage names collation.go's resolveCodepage
// produces to the x/text codec that actually implements them, so a Char/
// VarChar column's narrow (non-UCS-2) wire bytes decode (and
// a caller's string values encode) against the collation the server actually
// negotiated, not just against its header.
var codepageEncodings = map[string]encoding.Encoding{
	"CP1252": charmap.Windows1252,
	"CP1251": charmap.Windows1251,
	"CP850":  charmap.CodePage850,
	"CP437":  charmap.CodePage437,
	"CP932":  japanese.ShiftJIS,
	"CP936":  simplifiedchinese.GBK,
	"CP949":  korean.EUCKR,
}

// decodeCodepage turns wire bytes for a narrow-character value into UTF-8,
// per the column's collation-resolved codepage. "utf8" and the empty
// codepage (no collation known) pass the bytes through unchanged.
func decodeCodepage(b []byte, codepage string) (string, error) {
	enc, ok := codepageEncodings[codepage]
	if !ok {
		return string(b), nil
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), b)
	if err != nil {
		return "", &ProtocolError{Msg: "invalid " + codepage + " byte sequence"}
	}
	return string(out), nil
}

// encodeCodepage turns a Char/VarChar column's UTF-8 value into the
// narrow (non-UCS-2) wire encoding its collation resolves to.
func encodeCodepage(s string, codepage string) ([]byte, error) {
	enc, ok := codepageEncodings[codepage]
	if !ok {
		return []byte(s), nil
	}
	out, _, err := transform.Bytes(enc.NewEncoder(), []byte(s))
	if err != nil {
		return nil, &ProtocolError{Msg: "value cannot be represented in " + codepage}
	}
	return out, nil
}

// effectiveCodepage resolves the codepage a value codec should use: the
// decoded Codepage field if one was already computed (the COLMETADATA path,
// via parseCollation), otherwise a fresh resolution from the collation's raw
// fields (the bulk-load path, where a caller may set Collation directly
// without going through parseCollation).
func (c Collation) effectiveCodepage() string {
	if c.Codepage != "" {
		return c.Codepage
	}
	return resolveCodepage(c)
}
