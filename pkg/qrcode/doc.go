// Package qrcode renders otpauth:// URIs as QR codes so a stored secret can
// be moved to a phone authenticator.
//
// Generate and GenerateBase64Image return PNG data, WriteFile stores it on
// disk and Terminal returns a block-character rendering for the console.
//
//	uri, _ := totp.GetTOTPURI(totp.URIParams{Secret: s, AccountName: "work", Issuer: "open2fa"})
//	art, err := qrcode.Terminal(uri, false)
//	if err != nil {
//		return err
//	}
//	fmt.Println(art)
package qrcode
