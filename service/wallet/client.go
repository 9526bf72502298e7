package wallet

import (
	"errors"
	"net/http"
	"time"
)

var (
	ErrStatusCodeNotOk = errors.New("http.status not 2xx")
)

type ClientCfg struct {
	HttpClient http.Client
	BaseUrl    string
	ApiKey     string
	Timeout    time.Duration
}

type holdRequest struct {
	UserId    string `json:"userId"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Reference string `json:"reference"`
}

type transferRequest struct {
	FromUserId string `json:"fromUserId"`
	ToUserId   string `json:"toUserId"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	Reference  string `json:"reference"`
}
