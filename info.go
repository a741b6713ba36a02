package open2fa

// Info summarizes the local installation. Identity fields are nil without an
// identity.
type Info struct {
	Dir      string  `yaml:"dir"`
	APIURL   string  `yaml:"api_url"`
	Secrets  int     `yaml:"secrets"`
	UUID     *string `yaml:"uuid"`
	PublicID *string `yaml:"public_id"`
	Key      *string `yaml:"key"`
}

// Info reports the configuration and identity. Unless reveal is set, UUID,
// public id and key are cut to their first character followed by "...".
func (m *Manager) Info(reveal bool) Info {
	info := Info{
		Dir:     m.cfg.Dir,
		APIURL:  m.cfg.APIURL,
		Secrets: m.store.Len(),
	}
	if !m.HasIdentity() {
		return info
	}

	show := func(v string) *string {
		if !reveal && len(v) > 1 {
			v = v[:1] + "..."
		}
		return &v
	}
	info.UUID = show(m.ident.UUID().String())
	info.PublicID = show(m.ident.PublicID())
	info.Key = show(m.ident.EncodedKey())
	return info
}
