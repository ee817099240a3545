package browser

import (
	"strconv"

	"passlink/internal/domain"
)

// Actions understood by the host.
const (
	ActionChangePublicKeys = "change-public-keys"
	ActionGetLogins        = "get-logins"
)

// Request is the outer envelope sent by the extension. Message, when
// present, is a base64 box ciphertext of a JSON object.
type Request struct {
	Action    string `json:"action"`
	PublicKey string `json:"publicKey,omitempty"`
	Nonce     string `json:"nonce"`
	ClientID  string `json:"clientID"`
	Message   string `json:"message,omitempty"`
}

// Response is the outer envelope returned to the extension.
type Response struct {
	Action    string `json:"action"`
	PublicKey string `json:"publicKey,omitempty"`
	Message   string `json:"message,omitempty"`
	Nonce     string `json:"nonce,omitempty"`
	ClientID  string `json:"clientID,omitempty"`
	Success   string `json:"success,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`
}

// loginsRequest is the decrypted body of get-logins.
type loginsRequest struct {
	Action    string `json:"action"`
	URL       string `json:"url"`
	SubmitURL string `json:"submitUrl"`
}

// LoginsReply is the decrypted body answering get-logins.
type LoginsReply struct {
	Action  string               `json:"action"`
	Count   int                  `json:"count"`
	Entries []domain.LoginResult `json:"entries"`
	Nonce   string               `json:"nonce"`
	Success string               `json:"success"`
}

// ErrorCode is the numeric code the extension maps to a user message.
type ErrorCode int

const (
	CodePublicKeyNotReceived ErrorCode = 3
	CodeCannotDecrypt        ErrorCode = 4
	CodeActionDenied         ErrorCode = 6
	CodeCannotEncrypt        ErrorCode = 7
	CodeKeyChangeFailed      ErrorCode = 9
	CodeKeyNotRecognized     ErrorCode = 10
	CodeIncorrectAction      ErrorCode = 12
	CodeEmptyMessage         ErrorCode = 13
	CodeNoURL                ErrorCode = 14
)

var codeText = map[ErrorCode]string{
	CodePublicKeyNotReceived: "Client public key not received",
	CodeCannotDecrypt:        "Cannot decrypt message",
	CodeActionDenied:         "Action cancelled or denied",
	CodeCannotEncrypt:        "Cannot encrypt message",
	CodeKeyChangeFailed:      "Key change was not successful",
	CodeKeyNotRecognized:     "Encryption key is not recognized",
	CodeIncorrectAction:      "Incorrect action",
	CodeEmptyMessage:         "Empty message received",
	CodeNoURL:                "No URL provided",
}

func (c ErrorCode) String() string {
	if s, ok := codeText[c]; ok {
		return s
	}
	return "Unknown error"
}

const (
	trueStr  = "true"
	falseStr = "false"
)

func errorResponse(action string, code ErrorCode) Response {
	return Response{
		Action:    action,
		Success:   falseStr,
		Error:     code.String(),
		ErrorCode: strconv.Itoa(int(code)),
	}
}
