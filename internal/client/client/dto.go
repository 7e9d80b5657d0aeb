package client

import (
	"encoding/json"
	"strconv"

	"github.com/dmitrijs2005/traveldiary/internal/client/models"
)

// queryParam is the repeated query-string key carrying document filters.
const queryParam = "queries[]"

type errorDTO struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Type    string `json:"type"`
}

type accountDTO struct {
	ID    string `json:"$id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type sessionDTO struct {
	ID     string `json:"$id"`
	UserID string `json:"userId"`
	Expire string `json:"expire"`
	Secret string `json:"secret"`
}

type jwtDTO struct {
	JWT string `json:"jwt"`
}

type newAccountBody struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type emailSessionBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createDocumentBody struct {
	DocumentID string `json:"documentId"`
	Data       any    `json:"data"`
}

type updateDocumentBody struct {
	Data any `json:"data"`
}

type documentList[T any] struct {
	Total     int `json:"total"`
	Documents []T `json:"documents"`
}

type profileDoc struct {
	ID        string `json:"$id,omitempty"`
	AccountID string `json:"accountId"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Avatar    string `json:"avatar"`
}

func (d profileDoc) toModel() models.User {
	return models.User{
		ID:        d.ID,
		AccountID: d.AccountID,
		Email:     d.Email,
		Username:  d.Username,
		Avatar:    d.Avatar,
	}
}

type entryData struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Location  string   `json:"location"`
	Images    []string `json:"images"`
	Traveler  string   `json:"traveler"`
	CreatedAt string   `json:"created_at,omitempty"`
}

// entryUpdate leaves owner and creation date alone.
type entryUpdate struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Location string   `json:"location"`
	Images   []string `json:"images"`
}

type entryDoc struct {
	ID        string          `json:"$id"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	Location  string          `json:"location"`
	Images    []string        `json:"images"`
	Traveler  json.RawMessage `json:"traveler"`
	CreatedAt string          `json:"created_at"`
}

func (d entryDoc) toModel() models.TravelEntry {
	return models.TravelEntry{
		ID:        d.ID,
		Title:     d.Title,
		Content:   d.Content,
		Location:  d.Location,
		Images:    d.Images,
		CreatedAt: d.CreatedAt,
		Owner:     ownerRef(d.Traveler),
	}
}

// ownerRef accepts the traveler attribute either as a plain id or as an
// expanded relationship document.
func ownerRef(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id
	}

	var doc struct {
		ID string `json:"$id"`
	}
	if err := json.Unmarshal(raw, &doc); err == nil {
		return doc.ID
	}
	return ""
}

type tipDoc struct {
	ID      string `json:"$id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type queryDTO struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute,omitempty"`
	Values    []any  `json:"values"`
}

func equalQuery(attribute string, values ...string) string {
	q := queryDTO{Method: "equal", Attribute: attribute, Values: make([]any, len(values))}
	for i, v := range values {
		q.Values[i] = v
	}
	b, _ := json.Marshal(q)
	return string(b)
}

func limitQuery(n int) string {
	return `{"method":"limit","values":[` + strconv.Itoa(n) + `]}`
}
