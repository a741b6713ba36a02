// Package store keeps the local collection of TOTP secrets in a single
// secrets.json document.
//
// The document has the shape
//
//	{"secrets": [{"secret": "JBSWY3DPEHPK3PXP", "name": "work"}, {"secret": "...", "name": null}]}
//
// and lives in an owner-only directory (0700) with owner-only file
// permissions (0600). Secrets are kept sorted case-insensitively by name.
// A (secret, name) pair is unique: the same secret may be stored under
// several names.
//
// Every mutation rewrites the whole file through a temporary file and a
// rename, so an interrupted write leaves the previous document intact.
// The store does no locking: two processes writing the same directory
// concurrently can lose each other's changes.
//
// Usage:
//
//	st, err := store.New(dir, store.WithConfirm(prompt))
//	if err != nil {
//		return err
//	}
//	if _, err := st.Add("JBSWY3DPEHPK3PXP", "work"); err != nil {
//		return err
//	}
//	for sec, err := range st.Generate("wo") {
//		if err != nil {
//			return err
//		}
//		fmt.Println(sec.Name, sec.Code)
//	}
package store
