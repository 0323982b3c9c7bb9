package sms

type SendSMSInput struct {
	To      string
	Message string
}

type sendRequest struct {
	Sender  string `json:"sender"`
	To      string `json:"to"`
	Message string `json:"message"`
}
