package websocket

// ─── Messages (Client → Server) ─────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is the only client payload the change feed accepts.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventChange Event = "change"
	EventError  Event = "error"
	EventPong   Event = "pong"
)

// ChangeNotice tells a client that the named entity changed and a refetch
// is in order. It deliberately carries no row data.
type ChangeNotice struct {
	Event  Event  `json:"event"`
	Entity string `json:"entity"`
	Action string `json:"action"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
