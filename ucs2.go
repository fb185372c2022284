package gotds

import (
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ucs2Encoding does the UCS-2LE <-> UTF-8 conversion BVARCHAR and
// USVARCHAR values need on the wire. golang.org/x/text's UTF16 codec with
// IgnoreBOM covers UCS-2 for our purposes: TDS character data never carries
// a byte-order mark.
var ucs2Encoding = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

func encodeUCS2(s string) ([]byte, error) {
	b, _, err := transform.Bytes(ucs2Encoding.NewEncoder(), []byte(s))
	if err != nil {
		return nil, &ProtocolError{Msg: "ucs2 encode: " + err.Error()}
	}
	return b, nil
}

func decodeUCS2(b []byte) (string, error) {
	out, _, err := transform.Bytes(ucs2Encoding.NewDecoder(), b)
	if err != nil {
		return "", &ProtocolError{Msg: "ucs2 decode: " + err.Error()}
	}
	return string(out), nil
}
