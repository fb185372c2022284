package gotds

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntTypeValidateRange(t *testing.T) {
	typ, ok := LookupTypeByName("Int")
	require.True(t, ok)
	col := ColumnDef{Name: "n", Type: typ}

	v, err := typ.Validate(col, 42)
	require.NoError(t, err)
	assert.Equal(t, int32(42), v)

	_, err = typ.Validate(col, int64(1)<<40)
	assert.Error(t, err)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestIntEncodeValue(t *testing.T) {
	typ, _ := LookupTypeByName("Int")
	col := ColumnDef{Name: "n", Type: typ}
	buf := NewTrackingBuffer(4)
	require.NoError(t, typ.EmitValueData(col, int32(258), buf))
	assert.Equal(t, []byte{0x02, 0x01, 0x00, 0x00}, buf.Bytes())
}

func TestNVarCharEncodeValue(t *testing.T) {
	typ, _ := LookupTypeByName("NVarChar")
	col := ColumnDef{Name: "s", Type: typ, Length: 50}
	buf := NewTrackingBuffer(16)
	require.NoError(t, typ.EmitValueData(col, "hi", buf))

	decoded, err := decodeUCS2(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "hi", decoded)
}

func TestDecimalValidateCoercesFloat(t *testing.T) {
	typ, _ := LookupTypeByName("Decimal")
	col := ColumnDef{Name: "d", Type: typ, Precision: 10, Scale: 2}

	v, err := typ.Validate(col, 3.14)
	require.NoError(t, err)
	d, ok := v.(decimal.Decimal)
	require.True(t, ok)
	assert.True(t, d.Equal(decimal.NewFromFloat(3.14)))
}

func TestDecimalValidateRejectsGarbageString(t *testing.T) {
	typ, _ := LookupTypeByName("Decimal")
	col := ColumnDef{Name: "d", Type: typ}

	_, err := typ.Validate(col, "not-a-number")
	assert.Error(t, err)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Equal(t, "Invalid decimal.", ve.Msg)
}

func TestBitTypeRoundTrip(t *testing.T) {
	typ, _ := LookupTypeByName("Bit")
	col := ColumnDef{Name: "b", Type: typ}

	v, err := typ.Validate(col, true)
	require.NoError(t, err)

	buf := NewTrackingBuffer(1)
	require.NoError(t, typ.EmitValueData(col, v, buf))
	assert.Equal(t, []byte{1}, buf.Bytes())
}
