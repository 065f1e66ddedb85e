package models

// Turn is one user/response exchange of a conversation
type Turn struct {
	User     string `json:"user"`
	Response string `json:"response"`
}
