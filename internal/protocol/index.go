package protocol

// Version gates codec and handling changes. Bump whenever an index or a
// message body shape changes.
const Version uint16 = 1

// Client-to-server message indices. Sequential, 0-based, table lookup.
const (
	C2SDeviceBuffer uint16 = iota
	C2SSuperAdmin
	C2SCreateNetwork
	C2SDeleteNetwork
	C2SEditDevice
	C2SBindDevice
	C2SEditNetwork
	C2SUpdateNetwork
	C2SEditMember
	C2SEditConnection
	C2SWirelessMode
	C2SDisconnect
	C2SUpdateConnections

	c2sCount
)

// C2SCount is the number of client-to-server messages; the dispatch table
// must have exactly this many entries.
const C2SCount = int(c2sCount)

// Server-to-client message indices. Sequential, 0-based.
const (
	S2CDeviceBuffer uint16 = iota
	S2CResponse
	S2CCapability
	S2CUpdateNetwork
	S2CDeleteNetwork
	S2CUpdateConnections
	S2CUpdateMembers
)

// ResponseCode is the status byte carried by a response message.
type ResponseCode byte

const (
	ResponseSuccess ResponseCode = iota
	ResponseReject
	ResponseNoAdmin
	ResponseNoOwner
	ResponseInvalidUser
	ResponseInvalidTarget
	ResponseHasController
	ResponseRequirePassword
	ResponseInvalidPassword
	ResponseNoSpace
)

func (c ResponseCode) String() string {
	switch c {
	case ResponseSuccess:
		return "success"
	case ResponseReject:
		return "reject"
	case ResponseNoAdmin:
		return "no_admin"
	case ResponseNoOwner:
		return "no_owner"
	case ResponseInvalidUser:
		return "invalid_user"
	case ResponseInvalidTarget:
		return "invalid_target"
	case ResponseHasController:
		return "has_controller"
	case ResponseRequirePassword:
		return "require_password"
	case ResponseInvalidPassword:
		return "invalid_password"
	case ResponseNoSpace:
		return "no_space"
	default:
		return "unknown"
	}
}

// Request keys correlate an asynchronous response with the operation the
// client issued. By convention the key equals the C2S index.
const (
	RequestSuperAdmin        = C2SSuperAdmin
	RequestCreateNetwork     = C2SCreateNetwork
	RequestDeleteNetwork     = C2SDeleteNetwork
	RequestEditDevice        = C2SEditDevice
	RequestBindDevice        = C2SBindDevice
	RequestEditNetwork       = C2SEditNetwork
	RequestUpdateNetwork     = C2SUpdateNetwork
	RequestEditMember        = C2SEditMember
	RequestEditConnection    = C2SEditConnection
	RequestWirelessMode      = C2SWirelessMode
	RequestDisconnect        = C2SDisconnect
	RequestUpdateConnections = C2SUpdateConnections
)

// PayloadKind selects which subset of a network's state a state message
// serializes.
type PayloadKind byte

const (
	PayloadBasic PayloadKind = iota + 1
	PayloadMembers
	PayloadStatistics
	PayloadFull
)

// Valid reports whether k names a known payload kind.
func (k PayloadKind) Valid() bool {
	return k >= PayloadBasic && k <= PayloadFull
}

// MaxNameBytes bounds network display names on the wire.
const MaxNameBytes = 256

// MaxPasswordBytes bounds network passwords on the wire.
const MaxPasswordBytes = 256

// MaxConnectionBatch bounds one request-connection-payloads batch.
const MaxConnectionBatch = 7
