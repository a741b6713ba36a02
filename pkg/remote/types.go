package remote

// HeaderUserHash carries the caller's public id on every request.
const HeaderUserHash = "X-User-Hash"

// TOTPsPath is appended to the API base URL.
const TOTPsPath = "/totps"

// TOTP is one encrypted secret as exchanged with the sync endpoint.
// A nil Name is sent as JSON null.
type TOTP struct {
	Name      *string `json:"name"`
	EncSecret string  `json:"enc_secret"`
}

// NewTOTP builds a TOTP, mapping an empty name to null.
func NewTOTP(name, encSecret string) TOTP {
	t := TOTP{EncSecret: encSecret}
	if name != "" {
		t.Name = &name
	}
	return t
}

// DisplayName returns the name or "" when it is null.
func (t TOTP) DisplayName() string {
	if t.Name == nil {
		return ""
	}
	return *t.Name
}

// TOTPsPayload is the request body of POST and DELETE and the response body
// of POST and GET.
type TOTPsPayload struct {
	TOTPs []TOTP `json:"totps"`
}

// DeleteResponse is the response body of DELETE.
type DeleteResponse struct {
	Deleted int `json:"deleted"`
}

// ErrorResponse is the body the reference server sends with non-200 statuses.
type ErrorResponse struct {
	Error string `json:"error"`
}
