package gotds

// ColMetadataToken is the decoded COLMETADATA token: the ordered column
// descriptors for the rows that follow.
type ColMetadataToken struct {
	Columns []ColumnDef
}

// TDSVersion orders the negotiated protocol version numerically, since
// userTypeIsWide below needs to compare versions rather than just match them.
type TDSVersion uint32

const (
	TDS70 TDSVersion = 0x70000000
	TDS71 TDSVersion = 0x71000000
	TDS72 TDSVersion = 0x72090002
	TDS73 TDSVersion = 0x730B0003
	TDS74 TDSVersion = 0x74000004
)

func userTypeIsWide(v TDSVersion) bool { return v >= TDS72 }

func (p *StreamParser) readColMetadata() (*ColMetadataToken, error) {
	return p.readColMetadataVersion(TDS74)
}

// readColMetadataVersion decodes COLMETADATA for a specific negotiated TDS
// version, since the userType field's width depends on it.
func (p *StreamParser) readColMetadataVersion(version TDSVersion) (*ColMetadataToken, error) {
	count, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	if count == 0xFFFF {
		return &ColMetadataToken{}, nil
	}
	cols := make([]ColumnDef, count)
	for i := range cols {
		col, err := p.readColumnDef(version)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	return &ColMetadataToken{Columns: cols}, nil
}

func (p *StreamParser) readColumnDef(version TDSVersion) (ColumnDef, error) {
	var userType uint32
	var err error
	if userTypeIsWide(version) {
		userType, err = p.ReadUint32()
	} else {
		var narrow uint16
		narrow, err = p.ReadUint16()
		userType = uint32(narrow)
	}
	if err != nil {
		return ColumnDef{}, err
	}

	flags, err := p.ReadUint16()
	if err != nil {
		return ColumnDef{}, err
	}

	rawID, err := p.ReadUint8()
	if err != nil {
		return ColumnDef{}, err
	}
	typ, ok := LookupTypeByID(rawID)
	if !ok {
		return ColumnDef{}, &ProtocolError{Msg: "unknown column type id"}
	}

	col := ColumnDef{Type: typ, UserType: userType, Nullable: flags&0x01 != 0}

	if err := p.readColumnTail(typeID(rawID), &col); err != nil {
		return ColumnDef{}, err
	}

	name, err := p.ReadBVarChar()
	if err != nil {
		return ColumnDef{}, err
	}
	col.Name = name
	return col, nil
}

// readColumnTail decodes the per-type-family tail that follows the fixed
// column header.
func (p *StreamParser) readColumnTail(id typeID, col *ColumnDef) error {
	switch id {
	case idNull, idTinyInt, idSmallInt, idInt, idBigInt, idReal, idFloat,
		idSmallMoney, idMoney, idBit, idSmallDateTime, idDateTime, idDate:
		return nil

	case idIntN, idFloatN, idMoneyN, idBitN, idGuid, idDateTimeN:
		n, err := p.ReadUint8()
		if err != nil {
			return err
		}
		col.Length = int(n)
		return nil

	case idVariant:
		n, err := p.ReadUint32()
		if err != nil {
			return err
		}
		col.Length = int(n)
		return nil

	case idBigVarChar, idBigChar, idNVarChar, idNChar:
		n, err := p.ReadUint16()
		if err != nil {
			return err
		}
		col.Length = int(n)
		coll, err := p.ReadCollation()
		if err != nil {
			return err
		}
		col.Collation = coll
		return nil

	case idText, idNText:
		n, err := p.ReadUint32()
		if err != nil {
			return err
		}
		col.Length = int(n)
		coll, err := p.ReadCollation()
		if err != nil {
			return err
		}
		col.Collation = coll
		return nil

	case idBigVarBinary, idBigBinary:
		n, err := p.ReadUint16()
		if err != nil {
			return err
		}
		col.Length = int(n)
		return nil

	case idImage:
		n, err := p.ReadUint32()
		if err != nil {
			return err
		}
		col.Length = int(n)
		return nil

	case idXml:
		present, err := p.ReadUint8()
		if err != nil {
			return err
		}
		if present == 1 {
			if _, err := p.ReadBVarChar(); err != nil { // dbname
				return err
			}
			if _, err := p.ReadBVarChar(); err != nil { // owningSchema
				return err
			}
			if _, err := p.ReadUSVarChar(); err != nil { // xmlSchemaCollection
				return err
			}
		}
		return nil

	case idTime, idDateTime2, idDateTimeOffset:
		scale, err := p.ReadUint8()
		if err != nil {
			return err
		}
		col.Scale = scale
		return nil

	case idNumericN, idDecimalN:
		length, err := p.ReadUint8()
		if err != nil {
			return err
		}
		precision, err := p.ReadUint8()
		if err != nil {
			return err
		}
		scale, err := p.ReadUint8()
		if err != nil {
			return err
		}
		col.Length = int(length)
		col.Precision = precision
		col.Scale = scale
		return nil

	case idUdt:
		maxByteSize, err := p.ReadUint16()
		if err != nil {
			return err
		}
		col.Length = int(maxByteSize)
		if _, err := p.ReadBVarChar(); err != nil { // dbname
			return err
		}
		if _, err := p.ReadBVarChar(); err != nil { // owningSchema
			return err
		}
		if _, err := p.ReadBVarChar(); err != nil { // typeName
			return err
		}
		if _, err := p.ReadUSVarChar(); err != nil { // assemblyName
			return err
		}
		return nil

	default:
		return &ProtocolError{Msg: "unhandled column type family in tail decode"}
	}
}

// RowToken is one decoded ROW or NBCROW token: a value per column, in
// COLMETADATA order. Nil marks SQL NULL.
type RowToken struct {
	Values []any
}

// ReadRow decodes a ROW token's payload (the tag byte has already been
// consumed) given the preceding COLMETADATA's column list.
func (p *StreamParser) ReadRow(cols []ColumnDef) (*RowToken, error) {
	values := make([]any, len(cols))
	for i, col := range cols {
		v, err := p.readValue(col)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return &RowToken{Values: values}, nil
}

// ReadNbcRow decodes an NBCROW token's payload: a leading null-bitmap
// (ceil(n/8) bytes, bit i set means column i is NULL) followed by non-NULL
// column values only.
func (p *StreamParser) ReadNbcRow(cols []ColumnDef) (*RowToken, error) {
	bitmapLen := (len(cols) + 7) / 8
	bitmap, err := p.ReadBuffer(bitmapLen)
	if err != nil {
		return nil, err
	}
	values := make([]any, len(cols))
	for i, col := range cols {
		if bitmap[i/8]&(1<<(uint(i)%8)) != 0 {
			values[i] = nil
			continue
		}
		v, err := p.readValue(col)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return &RowToken{Values: values}, nil
}

func (p *StreamParser) readValue(col ColumnDef) (any, error) {
	switch col.Type.ID {
	case idInt:
		return p.ReadInt32()
	case idSmallInt:
		return p.ReadInt16()
	case idTinyInt:
		return p.ReadUint8()
	case idBigInt:
		return p.ReadInt64()
	case idBit:
		b, err := p.ReadUint8()
		return b != 0, err
	case idReal:
		return p.ReadFloat32()
	case idFloat:
		return p.ReadFloat64()
	case idBigVarChar, idBigChar:
		n, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		if n == 0xFFFF {
			return nil, nil
		}
		b, err := p.ReadBuffer(int(n))
		if err != nil {
			return nil, err
		}
		return decodeCodepage(b, col.Collation.effectiveCodepage())
	case idNVarChar, idNChar:
		n, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		if n == 0xFFFF {
			return nil, nil
		}
		b, err := p.ReadBuffer(int(n))
		if err != nil {
			return nil, err
		}
		return decodeUCS2(b)
	case idBigVarBinary, idBigBinary:
		n, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		if n == 0xFFFF {
			return nil, nil
		}
		return p.ReadBuffer(int(n))
	case idGuid:
		n, err := p.ReadUint8()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, nil
		}
		return p.ReadUUID()
	default:
		n, err := p.ReadUint8()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, nil
		}
		return p.ReadBuffer(int(n))
	}
}
