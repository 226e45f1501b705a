package broadcast

const (
	MATCH_FOUND  = 20
	MATCH_RESULT = 21
)

// Message is the envelope pushed to subscribed clients
type Message struct {
	Code int         `json:"code"`
	Data interface{} `json:"data"`
}

type MatchFoundData struct {
	SessionID string   `json:"sessionId"`
	PlayerIDs []string `json:"playerIds"`
}

type MatchResultData struct {
	GameID  string         `json:"gameId"`
	Ratings map[string]int `json:"ratings"`
}

func NewMatchFoundMessage(sessionID string, playerIDs []string) Message {
	return Message{
		Code: MATCH_FOUND,
		Data: MatchFoundData{
			SessionID: sessionID,
			PlayerIDs: playerIDs,
		},
	}
}

func NewMatchResultMessage(gameID string, ratings map[string]int) Message {
	return Message{
		Code: MATCH_RESULT,
		Data: MatchResultData{
			GameID:  gameID,
			Ratings: ratings,
		},
	}
}

// Notifier is the outbound boundary used to tell players about
// session lifecycle events. The core never manages socket state itself.
type Notifier interface {
	NotifyMatchFormed(sessionID string, playerIDs []string)
	NotifyMatchResult(gameID string, ratings map[string]int)
}
