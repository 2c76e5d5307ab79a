package bridge

// DepartRequest reports a player leaving a remote game server.
type DepartRequest struct {
	Callsign  string `json:"callsign"`
	Address   string `json:"address"`
	Wins      int    `json:"wins"`
	Losses    int    `json:"losses"`
	TeamKills int    `json:"team_kills"`
	// AtUnixMilli is the departure time; zero means the server clock.
	AtUnixMilli int64 `json:"at_unix_ms,omitempty"`
}

// DepartResponse carries the record.DepartOutcome name.
type DepartResponse struct {
	Outcome string `json:"outcome"`
}

// ArriveRequest reports a player joining a remote game server.
type ArriveRequest struct {
	Callsign    string `json:"callsign"`
	Address     string `json:"address"`
	Observer    bool   `json:"observer"`
	AtUnixMilli int64  `json:"at_unix_ms,omitempty"`
}

// ArriveResponse carries the record.Outcome name and, for "restored", the
// counters the caller must apply. Message is the line to show the player,
// empty when there is nothing to say.
type ArriveResponse struct {
	Outcome   string `json:"outcome"`
	Wins      int    `json:"wins,omitempty"`
	Losses    int    `json:"losses,omitempty"`
	TeamKills int    `json:"team_kills,omitempty"`
	Message   string `json:"message,omitempty"`
}

// PingRequest is the input for the Ping method.
type PingRequest struct{}

// PingResponse describes the serving restorer.
type PingResponse struct {
	Records         int     `json:"records"`
	SaveTimeSeconds float64 `json:"save_time_seconds"`
	ServerTimeUnix  int64   `json:"server_time_unix"`
}

// bridgeMsg is a marker interface satisfied by every message above.
type bridgeMsg interface {
	isBridgeMsg()
}

func (*DepartRequest) isBridgeMsg()  {}
func (*DepartResponse) isBridgeMsg() {}
func (*ArriveRequest) isBridgeMsg()  {}
func (*ArriveResponse) isBridgeMsg() {}
func (*PingRequest) isBridgeMsg()    {}
func (*PingResponse) isBridgeMsg()   {}
