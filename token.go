package gotds

// tokenType identifies the one-byte tag that begins every token in a TDS
// response stream.
type tokenType uint8

const (
	tokenReturnStatus tokenType = 0x79
	tokenColMetadata  tokenType = 0x81
	tokenOrder        tokenType = 0xA9
	tokenError        tokenType = 0xAA
	tokenInfo         tokenType = 0xAB
	tokenLoginAck     tokenType = 0xAD
	tokenRow          tokenType = 0xD1
	tokenNbcRow       tokenType = 0xD2
	tokenEnvChange    tokenType = 0xE3
	tokenSessionState tokenType = 0xE4
	tokenDone         tokenType = 0xFD
	tokenDoneProc     tokenType = 0xFE
	tokenDoneInProc   tokenType = 0xFF
)

func (t tokenType) String() string {
	switch t {
	case tokenReturnStatus:
		return "RETURNSTATUS"
	case tokenColMetadata:
		return "COLMETADATA"
	case tokenOrder:
		return "ORDER"
	case tokenError:
		return "ERROR"
	case tokenInfo:
		return "INFO"
	case tokenLoginAck:
		return "LOGINACK"
	case tokenRow:
		return "ROW"
	case tokenNbcRow:
		return "NBCROW"
	case tokenEnvChange:
		return "ENVCHANGE"
	case tokenSessionState:
		return "SESSIONSTATE"
	case tokenDone:
		return "DONE"
	case tokenDoneProc:
		return "DONEPROC"
	case tokenDoneInProc:
		return "DONEINPROC"
	default:
		return "UNKNOWN"
	}
}

// doneStatus are the bits packed into a DONE/DONEPROC/DONEINPROC token's
// Status field.
type doneStatus uint16

const (
	doneFinal      doneStatus = 0x0000
	doneMore       doneStatus = 0x0001
	doneError      doneStatus = 0x0002
	doneInXact     doneStatus = 0x0004
	doneProc       doneStatus = 0x0008
	doneCount      doneStatus = 0x0010
	doneAttn       doneStatus = 0x0020
	doneSrvError   doneStatus = 0x0100
)

// doneToken is the decoded form of a DONE/DONEPROC/DONEINPROC token.
type doneToken struct {
	Status       doneStatus
	CurrentCmd   uint16
	RowCount     uint64
}

func (d doneToken) hasMore() bool   { return d.Status&doneMore != 0 }
func (d doneToken) isError() bool   { return d.Status&doneError != 0 }
func (d doneToken) isAttn() bool    { return d.Status&doneAttn != 0 }
func (d doneToken) hasRowCount() bool { return d.Status&doneCount != 0 }
