package gotds

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/golang-sql/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// typeID is the one-byte TDS wire type identifier. Values match the
// conventional go-mssqldb constants so DSNs and fixtures referencing
// them by number stay meaningful.
type typeID uint8

const (
	idNull            typeID = 0x1F
	idTinyInt         typeID = 0x30
	idBit             typeID = 0x32
	idSmallInt        typeID = 0x34
	idInt             typeID = 0x38
	idSmallDateTime   typeID = 0x3A
	idReal            typeID = 0x3B
	idMoney           typeID = 0x3C
	idDateTime        typeID = 0x3D
	idFloat           typeID = 0x3E
	idSmallMoney      typeID = 0x7A
	idBigInt          typeID = 0x7F
	idGuid            typeID = 0x24
	idIntN            typeID = 0x26
	idDecimal         typeID = 0x37
	idNumeric         typeID = 0x3F
	idBitN            typeID = 0x68
	idDecimalN        typeID = 0x6A
	idNumericN        typeID = 0x6C
	idFloatN          typeID = 0x6D
	idMoneyN          typeID = 0x6E
	idDateTimeN       typeID = 0x6F
	idVarChar         typeID = 0x27
	idBigVarBinary    typeID = 0xA5
	idBigVarChar      typeID = 0xA7
	idBigBinary       typeID = 0xAD
	idBigChar         typeID = 0xAF
	idNVarChar        typeID = 0xE7
	idNChar           typeID = 0xEF
	idText            typeID = 0x23
	idImage           typeID = 0x22
	idNText           typeID = 0x63
	idXml             typeID = 0xF1
	idUdt             typeID = 0xF0
	idDate            typeID = 0x28
	idTime            typeID = 0x29
	idDateTime2       typeID = 0x2A
	idDateTimeOffset  typeID = 0x2B
	idVariant         typeID = 0x62
)

// DataType is the registry entry for one column type: everything the
// metadata decoder and the bulk-load engine need to describe, validate, and
// encode a column of this type. Modelled as a struct of functions rather
// than an interface so a column's fixed parameters (length, precision,
// scale) can close over the emit/validate funcs without a new concrete type
// per parameterization.
type DataType struct {
	ID          typeID
	WireName    string
	DisplayName string

	// Declaration renders the SQL type declaration for a column with the
	// given length/precision/scale, e.g. for GetTableCreationSQL.
	Declaration func(col ColumnDef) string

	// EmitTypeInfo writes the type-info tail a COLMETADATA/bulk header
	// needs for a column of this type.
	EmitTypeInfo func(col ColumnDef, buf *TrackingBuffer) error

	// EmitLengthPrefix writes the per-value length prefix a ROW token
	// needs before the value bytes (size depends on family: u8/u16/u32,
	// or none for fixed-length types).
	EmitLengthPrefix func(col ColumnDef, value any, buf *TrackingBuffer) error

	// EmitValueData writes the value's bytes. Called with a non-nil value
	// only; the bulk-load engine writes a nil value as a null sentinel of
	// its own (0xFFFF, 0xFFFFFFFF or a zero length byte, by type family)
	// and calls neither EmitLengthPrefix nor EmitValueData for it.
	EmitValueData func(col ColumnDef, value any, buf *TrackingBuffer) error

	// Validate coerces value into the Go representation this type's
	// encoders expect, or returns a *ValidationError. A nil value always
	// validates to nil without calling into this func.
	Validate func(col ColumnDef, value any) (any, error)
}

// ColumnDef describes one column of a result set or a bulk-load target.
type ColumnDef struct {
	Name       string
	Type       *DataType
	UserType   uint32
	Nullable   bool
	Length     int
	Precision  uint8
	Scale      uint8
	Collation  Collation
	ObjName    string
}

var typeRegistry = map[typeID]*DataType{}
var typeByName = map[string]*DataType{}

func registerType(t *DataType) {
	typeRegistry[t.ID] = t
	typeByName[t.WireName] = t
}

// LookupTypeByID resolves a COLMETADATA typeId to a registry entry.
func LookupTypeByID(id uint8) (*DataType, bool) {
	t, ok := typeRegistry[typeID(id)]
	return t, ok
}

// LookupTypeByName resolves a bulk-load column's declared type name
// ("Int", "NVarChar", ...) to a registry entry.
func LookupTypeByName(name string) (*DataType, bool) {
	t, ok := typeByName[name]
	return t, ok
}

func init() {
	registerType(&DataType{
		ID: idInt, WireName: "Int", DisplayName: "int",
		Declaration:      func(ColumnDef) string { return "int" },
		EmitTypeInfo:     emitFixedTypeInfo(idInt),
		EmitLengthPrefix: noLengthPrefix,
		EmitValueData: func(col ColumnDef, value any, buf *TrackingBuffer) error {
			buf.WriteInt32LE(value.(int32))
			return nil
		},
		Validate: validateInt(-1<<31, 1<<31-1),
	})

	registerType(&DataType{
		ID: idSmallInt, WireName: "SmallInt", DisplayName: "smallint",
		Declaration:      func(ColumnDef) string { return "smallint" },
		EmitTypeInfo:     emitFixedTypeInfo(idSmallInt),
		EmitLengthPrefix: noLengthPrefix,
		EmitValueData: func(col ColumnDef, value any, buf *TrackingBuffer) error {
			buf.WriteInt16LE(value.(int16))
			return nil
		},
		Validate: validateInt(-1<<15, 1<<15-1),
	})

	registerType(&DataType{
		ID: idTinyInt, WireName: "TinyInt", DisplayName: "tinyint",
		Declaration:      func(ColumnDef) string { return "tinyint" },
		EmitTypeInfo:     emitFixedTypeInfo(idTinyInt),
		EmitLengthPrefix: noLengthPrefix,
		EmitValueData: func(col ColumnDef, value any, buf *TrackingBuffer) error {
			buf.WriteByte(value.(uint8))
			return nil
		},
		Validate: validateInt(0, 255),
	})

	registerType(&DataType{
		ID: idBigInt, WireName: "BigInt", DisplayName: "bigint",
		Declaration:      func(ColumnDef) string { return "bigint" },
		EmitTypeInfo:     emitFixedTypeInfo(idBigInt),
		EmitLengthPrefix: noLengthPrefix,
		EmitValueData: func(col ColumnDef, value any, buf *TrackingBuffer) error {
			buf.WriteInt64LE(value.(int64))
			return nil
		},
		Validate: validateInt64(),
	})

	registerType(&DataType{
		ID: idBit, WireName: "Bit", DisplayName: "bit",
		Declaration:      func(ColumnDef) string { return "bit" },
		EmitTypeInfo:     emitFixedTypeInfo(idBit),
		EmitLengthPrefix: noLengthPrefix,
		EmitValueData: func(col ColumnDef, value any, buf *TrackingBuffer) error {
			if value.(bool) {
				buf.WriteByte(1)
			} else {
				buf.WriteByte(0)
			}
			return nil
		},
		Validate: func(col ColumnDef, value any) (any, error) {
			switch v := value.(type) {
			case bool:
				return v, nil
			default:
				return nil, &ValidationError{Column: col.Name, Msg: "invalid bit value"}
			}
		},
	})

	registerType(&DataType{
		ID: idReal, WireName: "Real", DisplayName: "real",
		Declaration:      func(ColumnDef) string { return "real" },
		EmitTypeInfo:     emitFixedTypeInfo(idReal),
		EmitLengthPrefix: noLengthPrefix,
		EmitValueData: func(col ColumnDef, value any, buf *TrackingBuffer) error {
			buf.WriteFloat32LE(value.(float32))
			return nil
		},
		Validate: func(col ColumnDef, value any) (any, error) {
			f, ok := toFloat64(value)
			if !ok {
				return nil, &ValidationError{Column: col.Name, Msg: "invalid real value"}
			}
			return float32(f), nil
		},
	})

	registerType(&DataType{
		ID: idFloat, WireName: "Float", DisplayName: "float",
		Declaration:      func(ColumnDef) string { return "float" },
		EmitTypeInfo:     emitFixedTypeInfo(idFloat),
		EmitLengthPrefix: noLengthPrefix,
		EmitValueData: func(col ColumnDef, value any, buf *TrackingBuffer) error {
			buf.WriteFloat64LE(value.(float64))
			return nil
		},
		Validate: func(col ColumnDef, value any) (any, error) {
			f, ok := toFloat64(value)
			if !ok {
				return nil, &ValidationError{Column: col.Name, Msg: "invalid float value"}
			}
			return f, nil
		},
	})

	registerType(&DataType{
		ID: idBigVarChar, WireName: "VarChar", DisplayName: "varchar",
		Declaration: func(col ColumnDef) string { return fmt.Sprintf("varchar(%d)", varcharLen(col)) },
		EmitTypeInfo: func(col ColumnDef, buf *TrackingBuffer) error {
			buf.WriteUint16LE(uint16(varcharLen(col)))
			return emitCollation(col, buf)
		},
		EmitLengthPrefix: codepageLengthPrefix,
		EmitValueData:    codepageEmitValue,
		Validate:         validateVarString(8000),
	})

	registerType(&DataType{
		ID: idBigChar, WireName: "Char", DisplayName: "char",
		Declaration: func(col ColumnDef) string { return fmt.Sprintf("char(%d)", varcharLen(col)) },
		EmitTypeInfo: func(col ColumnDef, buf *TrackingBuffer) error {
			buf.WriteUint16LE(uint16(varcharLen(col)))
			return emitCollation(col, buf)
		},
		EmitLengthPrefix: codepageLengthPrefix,
		EmitValueData:    codepageEmitValue,
		Validate:         validateVarString(8000),
	})

	registerType(&DataType{
		ID: idNVarChar, WireName: "NVarChar", DisplayName: "nvarchar",
		Declaration: func(col ColumnDef) string { return fmt.Sprintf("nvarchar(%d)", varcharLen(col)) },
		EmitTypeInfo: func(col ColumnDef, buf *TrackingBuffer) error {
			buf.WriteUint16LE(uint16(varcharLen(col) * 2))
			return emitCollation(col, buf)
		},
		EmitLengthPrefix: u16LengthPrefix(func(v any) int {
			encoded, _ := encodeUCS2(v.(string))
			return len(encoded)
		}),
		EmitValueData: func(col ColumnDef, value any, buf *TrackingBuffer) error {
			encoded, err := encodeUCS2(value.(string))
			if err != nil {
				return err
			}
			_, err = buf.WriteBytes(encoded)
			return err
		},
		Validate: validateVarString(4000),
	})

	registerType(&DataType{
		ID: idNChar, WireName: "NChar", DisplayName: "nchar",
		Declaration: func(col ColumnDef) string { return fmt.Sprintf("nchar(%d)", varcharLen(col)) },
		EmitTypeInfo: func(col ColumnDef, buf *TrackingBuffer) error {
			buf.WriteUint16LE(uint16(varcharLen(col) * 2))
			return emitCollation(col, buf)
		},
		EmitLengthPrefix: u16LengthPrefix(func(v any) int {
			encoded, _ := encodeUCS2(v.(string))
			return len(encoded)
		}),
		EmitValueData: func(col ColumnDef, value any, buf *TrackingBuffer) error {
			encoded, err := encodeUCS2(value.(string))
			if err != nil {
				return err
			}
			_, err = buf.WriteBytes(encoded)
			return err
		},
		Validate: validateVarString(4000),
	})

	registerType(&DataType{
		ID: idBigVarBinary, WireName: "VarBinary", DisplayName: "varbinary",
		Declaration: func(col ColumnDef) string { return fmt.Sprintf("varbinary(%d)", varcharLen(col)) },
		EmitTypeInfo: func(col ColumnDef, buf *TrackingBuffer) error {
			buf.WriteUint16LE(uint16(varcharLen(col)))
			return nil
		},
		EmitLengthPrefix: u16LengthPrefix(func(v any) int { return len(v.([]byte)) }),
		EmitValueData: func(col ColumnDef, value any, buf *TrackingBuffer) error {
			_, err := buf.WriteBytes(value.([]byte))
			return err
		},
		Validate: func(col ColumnDef, value any) (any, error) {
			b, ok := value.([]byte)
			if !ok {
				return nil, &ValidationError{Column: col.Name, Msg: "invalid varbinary value"}
			}
			return b, nil
		},
	})

	registerType(&DataType{
		ID: idGuid, WireName: "UniqueIdentifier", DisplayName: "uniqueidentifier",
		Declaration: func(ColumnDef) string { return "uniqueidentifier" },
		EmitTypeInfo: func(col ColumnDef, buf *TrackingBuffer) error {
			buf.WriteByte(16)
			return nil
		},
		EmitLengthPrefix: func(col ColumnDef, value any, buf *TrackingBuffer) error {
			buf.WriteByte(16)
			return nil
		},
		EmitValueData: func(col ColumnDef, value any, buf *TrackingBuffer) error {
			_, err := buf.WriteBytes(guidToMSBytes(value.(uuid.UUID)))
			return err
		},
		Validate: func(col ColumnDef, value any) (any, error) {
			switch v := value.(type) {
			case uuid.UUID:
				return v, nil
			case string:
				id, err := uuid.Parse(v)
				if err != nil {
					return nil, &ValidationError{Column: col.Name, Msg: "invalid guid value"}
				}
				return id, nil
			default:
				return nil, &ValidationError{Column: col.Name, Msg: "invalid guid value"}
			}
		},
	})

	registerType(&DataType{
		ID: idDecimalN, WireName: "Decimal", DisplayName: "decimal",
		Declaration: func(col ColumnDef) string {
			return fmt.Sprintf("decimal(%d,%d)", col.Precision, col.Scale)
		},
		EmitTypeInfo: func(col ColumnDef, buf *TrackingBuffer) error {
			buf.WriteByte(decimalStorageLen(col.Precision))
			buf.WriteByte(col.Precision)
			buf.WriteByte(col.Scale)
			return nil
		},
		EmitLengthPrefix: func(col ColumnDef, value any, buf *TrackingBuffer) error {
			buf.WriteByte(decimalStorageLen(col.Precision))
			return nil
		},
		EmitValueData: func(col ColumnDef, value any, buf *TrackingBuffer) error {
			return emitDecimal(value.(decimal.Decimal), col, buf)
		},
		Validate: validateDecimal(),
	})

	registerType(&DataType{
		ID: idMoneyN, WireName: "Money", DisplayName: "money",
		Declaration: func(ColumnDef) string { return "money" },
		EmitTypeInfo: func(col ColumnDef, buf *TrackingBuffer) error {
			buf.WriteByte(8)
			return nil
		},
		EmitLengthPrefix: func(col ColumnDef, value any, buf *TrackingBuffer) error {
			buf.WriteByte(8)
			return nil
		},
		EmitValueData: func(col ColumnDef, value any, buf *TrackingBuffer) error {
			scaled := value.(decimal.Decimal).Mul(decimal.New(10000, 0)).IntPart()
			buf.WriteInt32LE(int32(scaled >> 32))
			buf.WriteInt32LE(int32(scaled & 0xFFFFFFFF))
			return nil
		},
		Validate: validateDecimal(),
	})

	registerType(&DataType{
		ID: idDateTime2, WireName: "DateTime2", DisplayName: "datetime2",
		Declaration: func(col ColumnDef) string { return fmt.Sprintf("datetime2(%d)", col.Scale) },
		EmitTypeInfo: func(col ColumnDef, buf *TrackingBuffer) error {
			buf.WriteByte(col.Scale)
			return nil
		},
		EmitLengthPrefix: func(col ColumnDef, value any, buf *TrackingBuffer) error {
			buf.WriteByte(dateTime2Len(col.Scale))
			return nil
		},
		EmitValueData: func(col ColumnDef, value any, buf *TrackingBuffer) error {
			return emitDateTime2(value.(time.Time), col.Scale, buf)
		},
		Validate: validateTime(),
	})

	registerType(&DataType{
		ID: idDate, WireName: "Date", DisplayName: "date",
		Declaration:      func(ColumnDef) string { return "date" },
		EmitTypeInfo:     func(col ColumnDef, buf *TrackingBuffer) error { return nil },
		EmitLengthPrefix: func(col ColumnDef, value any, buf *TrackingBuffer) error { buf.WriteByte(3); return nil },
		EmitValueData: func(col ColumnDef, value any, buf *TrackingBuffer) error {
			days := civilDateDays(value.(civil.Date))
			b := []byte{byte(days), byte(days >> 8), byte(days >> 16)}
			_, err := buf.WriteBytes(b)
			return err
		},
		Validate: validateDate(),
	})

	registerType(&DataType{
		ID: idSmallDateTime, WireName: "SmallDateTime", DisplayName: "smalldatetime",
		Declaration:      func(ColumnDef) string { return "smalldatetime" },
		EmitTypeInfo:     func(col ColumnDef, buf *TrackingBuffer) error { return nil },
		EmitLengthPrefix: noLengthPrefix,
		EmitValueData: func(col ColumnDef, value any, buf *TrackingBuffer) error {
			days, minutes := smallDateTimeParts(value.(time.Time))
			buf.WriteUint16LE(days)
			buf.WriteUint16LE(minutes)
			return nil
		},
		Validate: validateTime(),
	})

	registerType(&DataType{
		ID: idNull, WireName: "Null", DisplayName: "null",
		Declaration:      func(ColumnDef) string { return "sql_variant" },
		EmitTypeInfo:     func(col ColumnDef, buf *TrackingBuffer) error { return nil },
		EmitLengthPrefix: noLengthPrefix,
		EmitValueData:    func(col ColumnDef, value any, buf *TrackingBuffer) error { return nil },
		Validate: func(col ColumnDef, value any) (any, error) { return nil, nil },
	})
}

func varcharLen(col ColumnDef) int {
	if col.Length <= 0 {
		return 1
	}
	return col.Length
}

func emitFixedTypeInfo(typeID) func(ColumnDef, *TrackingBuffer) error {
	return func(col ColumnDef, buf *TrackingBuffer) error { return nil }
}

func noLengthPrefix(col ColumnDef, value any, buf *TrackingBuffer) error { return nil }

func u16LengthPrefix(size func(any) int) func(ColumnDef, any, *TrackingBuffer) error {
	return func(col ColumnDef, value any, buf *TrackingBuffer) error {
		buf.WriteUint16LE(uint16(size(value)))
		return nil
	}
}

func emitCollation(col ColumnDef, buf *TrackingBuffer) error {
	b := marshalCollation(col.Collation)
	_, err := buf.WriteBytes(b[:])
	return err
}

// codepageLengthPrefix writes the u16 byte length of value once it's been
// transcoded into the column's collation-resolved codepage, so the prefix
// matches what codepageEmitValue actually writes (for non-ASCII text the
// encoded length differs from the UTF-8 byte length, and multi-byte
// codepages such as CP932 also differ from the character count).
func codepageLengthPrefix(col ColumnDef, value any, buf *TrackingBuffer) error {
	encoded, err := encodeCodepage(value.(string), col.Collation.effectiveCodepage())
	if err != nil {
		return &ValidationError{Column: col.Name, Msg: err.Error()}
	}
	buf.WriteUint16LE(uint16(len(encoded)))
	return nil
}

func codepageEmitValue(col ColumnDef, value any, buf *TrackingBuffer) error {
	encoded, err := encodeCodepage(value.(string), col.Collation.effectiveCodepage())
	if err != nil {
		return &ValidationError{Column: col.Name, Msg: err.Error()}
	}
	_, err = buf.WriteBytes(encoded)
	return err
}

func decimalStorageLen(precision uint8) byte {
	switch {
	case precision <= 9:
		return 5
	case precision <= 19:
		return 9
	case precision <= 28:
		return 13
	default:
		return 17
	}
}

func emitDecimal(d decimal.Decimal, col ColumnDef, buf *TrackingBuffer) error {
	if d.Sign() < 0 {
		buf.WriteByte(0)
	} else {
		buf.WriteByte(1)
	}
	scaled := d.Abs().Shift(int32(col.Scale)).Coefficient()
	storageLen := int(decimalStorageLen(col.Precision)) - 1
	b := scaled.Bytes()
	padded := make([]byte, storageLen)
	for i := 0; i < len(b) && i < storageLen; i++ {
		padded[i] = b[len(b)-1-i]
	}
	_, err := buf.WriteBytes(padded)
	return err
}

func dateTime2Len(scale uint8) byte {
	switch {
	case scale <= 2:
		return 6
	case scale <= 4:
		return 7
	default:
		return 8
	}
}

func emitDateTime2(t time.Time, scale uint8, buf *TrackingBuffer) error {
	epoch := time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	nanosSinceMidnight := t.Hour()*3600e9 + t.Minute()*60e9 + t.Second()*1e9 + t.Nanosecond()
	scaleFactor := int64(1)
	for i := uint8(0); i < 7-scale; i++ {
		scaleFactor *= 10
	}
	timeUnits := int64(nanosSinceMidnight) / (100 * scaleFactor)
	n := int(dateTime2Len(scale)) - 3
	var tb [8]byte
	for i := 0; i < n; i++ {
		tb[i] = byte(timeUnits >> (8 * i))
	}
	if _, err := buf.WriteBytes(tb[:n]); err != nil {
		return err
	}
	days := int32(t.Sub(epoch).Hours() / 24)
	db := []byte{byte(days), byte(days >> 8), byte(days >> 16)}
	_, err := buf.WriteBytes(db)
	return err
}

func smallDateTimeParts(t time.Time) (days, minutes uint16) {
	epoch := time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	d := t.Sub(epoch)
	return uint16(d.Hours() / 24), uint16(int(d.Minutes()) % (24 * 60))
}

func civilDateDays(d civil.Date) int32 {
	epoch := civil.DateOf(time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC))
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
	e := time.Date(epoch.Year, time.Month(epoch.Month), epoch.Day, 0, 0, 0, 0, time.UTC)
	return int32(t.Sub(e).Hours() / 24)
}

func guidToMSBytes(id uuid.UUID) []byte {
	b := make([]byte, 16)
	copy(b, id[:])
	b[0], b[1], b[2], b[3] = id[3], id[2], id[1], id[0]
	b[4], b[5] = id[5], id[4]
	b[6], b[7] = id[7], id[6]
	return b
}

func toFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case int16:
		return int64(v), true
	case int8:
		return int64(v), true
	case uint8:
		return int64(v), true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

func validateInt(min, max int64) func(ColumnDef, any) (any, error) {
	return func(col ColumnDef, value any) (any, error) {
		n, ok := toInt64(value)
		if !ok || n < min || n > max {
			return nil, &ValidationError{Column: col.Name, Msg: "invalid integer value"}
		}
		switch {
		case max <= 255:
			return uint8(n), nil
		case max <= 1<<15-1:
			return int16(n), nil
		default:
			return int32(n), nil
		}
	}
}

func validateInt64() func(ColumnDef, any) (any, error) {
	return func(col ColumnDef, value any) (any, error) {
		n, ok := toInt64(value)
		if !ok {
			return nil, &ValidationError{Column: col.Name, Msg: "invalid integer value"}
		}
		return n, nil
	}
}

func validateVarString(maxLen int) func(ColumnDef, any) (any, error) {
	return func(col ColumnDef, value any) (any, error) {
		s, ok := value.(string)
		if !ok {
			return nil, &ValidationError{Column: col.Name, Msg: "invalid string value"}
		}
		if len(s) > maxLen || (col.Length > 0 && utf8.RuneCountInString(s) > col.Length) {
			return nil, &ValidationError{Column: col.Name, Msg: "string exceeds declared length"}
		}
		return s, nil
	}
}

func validateDecimal() func(ColumnDef, any) (any, error) {
	return func(col ColumnDef, value any) (any, error) {
		switch v := value.(type) {
		case decimal.Decimal:
			return v, nil
		case float64:
			return decimal.NewFromFloat(v), nil
		case string:
			d, err := decimal.NewFromString(v)
			if err != nil {
				return nil, &ValidationError{Column: col.Name, Msg: "Invalid decimal."}
			}
			return d, nil
		default:
			return nil, &ValidationError{Column: col.Name, Msg: "Invalid decimal."}
		}
	}
}

func validateTime() func(ColumnDef, any) (any, error) {
	return func(col ColumnDef, value any) (any, error) {
		switch v := value.(type) {
		case time.Time:
			return v, nil
		case string:
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return nil, &ValidationError{Column: col.Name, Msg: "Invalid date."}
			}
			return t, nil
		default:
			return nil, &ValidationError{Column: col.Name, Msg: "Invalid date."}
		}
	}
}

func validateDate() func(ColumnDef, any) (any, error) {
	return func(col ColumnDef, value any) (any, error) {
		switch v := value.(type) {
		case civil.Date:
			return v, nil
		case time.Time:
			return civil.DateOf(v), nil
		case string:
			d, err := civil.ParseDate(v)
			if err != nil {
				return nil, &ValidationError{Column: col.Name, Msg: "Invalid date."}
			}
			return d, nil
		default:
			return nil, &ValidationError{Column: col.Name, Msg: "Invalid date."}
		}
	}
}
