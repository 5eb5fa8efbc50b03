package dto

type PutSecretRequest struct {
	Value string `json:"value"`
}

// SecretResponse reports presence only; stored values never leave the
// secrets service in plaintext.
type SecretResponse struct {
	Key    string `json:"key"`
	Exists bool   `json:"exists"`
}
